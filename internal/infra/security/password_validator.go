package security

import (
	"fmt"
	"unicode/utf8"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordRule validates one aspect of password quality.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordValidator runs a rule chain and returns the first failure.
type PasswordValidator struct {
	rules []PasswordRule
}

func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	return &PasswordValidator{rules: rules}
}

// DefaultPasswordValidator applies the standard registration policy.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule{Min: 8},
		MaxLengthRule{Max: 128},
		StrengthRule{MinScore: 2},
	)
}

func (v *PasswordValidator) Validate(password string) error {
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

type MinLengthRule struct {
	Min int
}

func (r MinLengthRule) Validate(password string) error {
	if utf8.RuneCountInString(password) < r.Min {
		return fmt.Errorf("password must be at least %d characters", r.Min)
	}
	return nil
}

type MaxLengthRule struct {
	Max int
}

func (r MaxLengthRule) Validate(password string) error {
	if utf8.RuneCountInString(password) > r.Max {
		return fmt.Errorf("password must be at most %d characters", r.Max)
	}
	return nil
}

// StrengthRule rejects guessable passwords using zxcvbn entropy
// estimation. Scores range 0 (trivial) to 4 (strong).
type StrengthRule struct {
	MinScore int
}

func (r StrengthRule) Validate(password string) error {
	result := zxcvbn.PasswordStrength(password, nil)
	if result.Score < r.MinScore {
		return fmt.Errorf("password is too weak, add length or variety")
	}
	return nil
}
