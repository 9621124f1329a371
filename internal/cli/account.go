package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitara/internal/identity"
)

// AccountManager remembers which account later runs act for.
type AccountManager interface {
	SignIn(account string) error
	SignOut() error
}

type LoginCmd struct {
	Account string `arg:"" help:"Account name whose habits this machine tracks."`
}

func (c *LoginCmd) Run(ctx *Context) error {
	if ctx.Accounts == nil {
		return fmt.Errorf("signing in is not supported in this configuration")
	}
	account := strings.TrimSpace(c.Account)
	if err := ctx.Accounts.SignIn(account); err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}
	ctx.Printf("Signed in as %s\n", account)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	if ctx.Accounts == nil {
		return fmt.Errorf("signing out is not supported in this configuration")
	}
	if err := ctx.Accounts.SignOut(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	ctx.Println("Signed out.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	if ctx.Identity == nil {
		return identity.ErrSignedOut
	}
	user, err := ctx.Identity.CurrentUser()
	if errors.Is(err, identity.ErrSignedOut) {
		ctx.Println("Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}
	ctx.Printf("%s\n", user)
	ctx.Printf("  storage: %s\n", ctx.Store.GetConfigPath())
	return nil
}
