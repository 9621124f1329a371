package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		return models.Frequency(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("goal", func(fl validator.FieldLevel) bool {
		return models.Goal(fl.Field().String()).Valid()
	})
}

// HabitInput is what the add/edit forms and commands collect from a user.
type HabitInput struct {
	Name      string `validate:"required,min=3,max=50"`
	Frequency string `validate:"required,frequency"`
	Goal      string `validate:"omitempty,goal"`
	Emoji     string `validate:"omitempty,max=16"`
	Details   string `validate:"max=500"`
}

// Validate returns the first problem as a sentence a user can act on.
// Bad enumerations also match models.ErrInvalidFrequency / ErrInvalidGoal.
func (in HabitInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Name":
		if fe.Tag() == "required" {
			return fmt.Errorf("name is required")
		}
		return fmt.Errorf("name must be between %d and %d characters", constants.HabitNameMin, constants.HabitNameMax)
	case "Frequency":
		return fmt.Errorf("%w: %q (expected one of daily, weekly, monthly)", models.ErrInvalidFrequency, in.Frequency)
	case "Goal":
		return fmt.Errorf("%w: %q (expected achieve or avoid)", models.ErrInvalidGoal, in.Goal)
	case "Emoji":
		return fmt.Errorf("emoji is too long")
	case "Details":
		return fmt.Errorf("details must be at most 500 characters")
	}
	return fmt.Errorf("%s is invalid (%s)", strings.ToLower(fe.Field()), fe.Tag())
}

// ValidateHabit checks the fields every stored habit must satisfy.
func ValidateHabit(name, frequency, goal string) error {
	return HabitInput{Name: name, Frequency: frequency, Goal: goal}.Validate()
}

// ValidateName is the huh field validator for habit names.
func ValidateName(name string) error {
	return ValidateHabit(name, string(models.FrequencyDaily), "")
}
