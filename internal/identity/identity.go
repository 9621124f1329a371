// Package identity resolves which account the current process acts for.
// Every stored habit and completion is scoped to that account.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitara/internal/keyring"
)

// ErrSignedOut is returned when no account is available.
var ErrSignedOut = errors.New("not signed in")

type Provider interface {
	CurrentUser() (string, error)
}

// Static always reports the same account. An empty Static is signed out.
type Static string

func (s Static) CurrentUser() (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrSignedOut
	}
	return string(s), nil
}

// Keyring reads the account saved by SignIn from the OS keyring.
type Keyring struct{}

func (Keyring) CurrentUser() (string, error) {
	account, err := keyring.GetAccount()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrSignedOut
		}
		return "", err
	}
	return account, nil
}

// SignIn remembers account for later runs.
func (Keyring) SignIn(account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return fmt.Errorf("account cannot be empty")
	}
	return keyring.SetAccount(account)
}

// SignOut forgets the stored account. Signing out twice is not an error.
func (Keyring) SignOut() error {
	if err := keyring.DeleteAccount(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// Chain returns the first provider that yields an account. Errors other than
// ErrSignedOut stop the search.
type Chain []Provider

func (c Chain) CurrentUser() (string, error) {
	for _, p := range c {
		user, err := p.CurrentUser()
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrSignedOut) {
			return "", err
		}
	}
	return "", ErrSignedOut
}
