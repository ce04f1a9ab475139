package validator

import (
	"fmt"
	"strings"
	"unicode"
)

// Frequently breached passwords that still satisfy length and class rules.
var commonPasswords = map[string]bool{
	"password1":   true,
	"password12":  true,
	"password123": true,
	"password!":   true,
	"qwerty123":   true,
	"qwerty12":    true,
	"abcd1234":    true,
	"admin123":    true,
	"welcome1":    true,
	"welcome123":  true,
	"letmein1":    true,
	"iloveyou1":   true,
	"1q2w3e4r":    true,
	"1qaz2wsx":    true,
	"zaq12wsx":    true,
	"trustno1":    true,
	"passw0rd":    true,
	"p@ssw0rd":    true,
	"changeme1":   true,
	"sunshine1":   true,
	"football1":   true,
	"baseball1":   true,
	"superman1":   true,
	"princess1":   true,
	"dragon123":   true,
	"monkey123":   true,
	"master123":   true,
	"secret123":   true,
}

// PasswordStrengthConfig is the password policy checked before hashing.
type PasswordStrengthConfig struct {
	MinLength      int  // runes
	MaxLength      int  // bytes, 0 disables the check
	MinCharClasses int  // of lower, upper, digit, other
	RejectCommon   bool // reject passwords from the breached list
}

// DefaultPasswordStrength returns the policy applied when none is configured:
// 8 to 72 characters, at least two character classes, no common passwords.
func DefaultPasswordStrength() PasswordStrengthConfig {
	return PasswordStrengthConfig{
		MinLength:      8,
		MaxLength:      72,
		MinCharClasses: 2,
		RejectCommon:   true,
	}
}

// PasswordStrength expands a policy into rules. Every violated rule is reported.
func PasswordStrength(field, value string, config PasswordStrengthConfig) []Rule {
	rules := []Rule{MinLen(field, value, config.MinLength)}
	if config.MaxLength > 0 {
		rules = append(rules, MaxBytes(field, value, config.MaxLength))
	}
	if config.MinCharClasses > 0 {
		rules = append(rules, PasswordCharClasses(field, value, config.MinCharClasses))
	}
	if config.RejectCommon {
		rules = append(rules, NotCommonPassword(field, value))
	}
	return rules
}

func PasswordCharClasses(field, value string, min int) Rule {
	return Rule{
		Check: func() bool {
			return countCharClasses(value) >= min
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must contain at least %d of: lowercase, uppercase, digits, symbols", min),
			TranslationKey: "validation.password_char_classes",
			TranslationValues: map[string]any{
				"field": field,
				"min":   min,
			},
		},
	}
}

func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return !commonPasswords[strings.ToLower(value)]
		},
		Error: ValidationError{
			Field:          field,
			Message:        "password is too common, please choose a different one",
			TranslationKey: "validation.password_common",
			TranslationValues: map[string]any{
				"field": field,
			},
		},
	}
}

func countCharClasses(value string) int {
	var lower, upper, digit, other bool
	for _, r := range value {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}

	n := 0
	for _, ok := range []bool{lower, upper, digit, other} {
		if ok {
			n++
		}
	}
	return n
}
