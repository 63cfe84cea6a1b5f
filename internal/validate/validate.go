// Package validate evaluates declarative per-field rules against flat
// request input before any business logic runs.
package validate

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// Rule is one constraint on one input field. Normalize, when set, rewrites
// the raw value before Check runs and before the value reaches downstream
// code. Check returns true when the (normalized) value passes.
type Rule struct {
	Field     string
	Message   string
	Normalize func(string) string
	Check     func(string) bool
}

// Violation is a single failed rule, reported with the value that failed.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// Run evaluates rules in order against fields. Normalized values replace
// the originals in the map. The returned slice is empty on success and
// lists violations in rule order otherwise.
func Run(fields map[string]string, rules []Rule) []Violation {
	var violations []Violation
	for _, rule := range rules {
		value := fields[rule.Field]
		if rule.Normalize != nil {
			value = rule.Normalize(value)
			fields[rule.Field] = value
		}
		if rule.Check != nil && !rule.Check(value) {
			violations = append(violations, Violation{
				Field:   rule.Field,
				Message: rule.Message,
				Value:   value,
			})
		}
	}
	return violations
}

// NonEmpty reports whether the value contains any non-space character.
func NonEmpty(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MinLen returns a check for a minimum rune count.
func MinLen(n int) func(string) bool {
	return func(value string) bool {
		return utf8.RuneCountInString(value) >= n
	}
}

// Email reports whether the value is a well-formed email address.
func Email(value string) bool {
	return v.Var(value, "required,email") == nil
}

// NormalizeEmail trims surrounding space and case-folds the address.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// SignupRules validates the signup payload.
func SignupRules() []Rule {
	return []Rule{
		{Field: "name", Message: "name is required.", Normalize: strings.TrimSpace, Check: NonEmpty},
		{Field: "email", Message: "email is invalid", Normalize: NormalizeEmail, Check: Email},
		{Field: "password", Message: "password must be at least 6 characters", Normalize: strings.TrimSpace, Check: MinLen(6)},
	}
}

// SigninRules validates the signin payload.
func SigninRules() []Rule {
	return []Rule{
		{Field: "email", Message: "email is invalid", Normalize: NormalizeEmail, Check: Email},
		{Field: "password", Message: "password is required", Check: NonEmpty},
	}
}

// PostRules validates create-post and edit-post fields.
func PostRules() []Rule {
	return []Rule{
		{Field: "title", Message: "title must be at least 5 characters", Normalize: strings.TrimSpace, Check: MinLen(5)},
		{Field: "content", Message: "content must be at least 5 characters", Normalize: strings.TrimSpace, Check: MinLen(5)},
	}
}
