// Package validate holds the form-field schemas shared by the client's forms.
//
// Every string schema trims surrounding whitespace first and then evaluates
// its rules in order; the first failing rule's message is the result and
// later rules are not evaluated.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Issue is a failed rule: the field it is attached to and the message to show.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i *Issue) Error() string {
	if i.Field == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// Schema validates one value and returns the first violated rule, or nil.
type Schema interface {
	Validate(data any) *Issue
}

// Field runs schema against data and returns the failure message, or "" when
// data is valid.
func Field(schema Schema, data any) string {
	if issue := schema.Validate(data); issue != nil {
		return issue.Message
	}
	return ""
}

// Rule is a predicate over a trimmed string and the message shown when it
// fails.
type Rule struct {
	Check   func(string) bool
	Message string
}

func Required(message string) Rule {
	return Rule{Check: func(s string) bool { return s != "" }, Message: message}
}

// MinLen and MaxLen count runes.
func MinLen(n int, message string) Rule {
	return Rule{Check: func(s string) bool { return utf8.RuneCountInString(s) >= n }, Message: message}
}

func MaxLen(n int, message string) Rule {
	return Rule{Check: func(s string) bool { return utf8.RuneCountInString(s) <= n }, Message: message}
}

func Matches(re *regexp.Regexp, message string) Rule {
	return Rule{Check: re.MatchString, Message: message}
}

// OneOf passes when any of rules passes.
func OneOf(message string, rules ...Rule) Rule {
	return Rule{
		Check: func(s string) bool {
			for _, r := range rules {
				if r.Check(s) {
					return true
				}
			}
			return false
		},
		Message: message,
	}
}

// MsgExpectedString is returned when a string schema receives another type.
const MsgExpectedString = "Expected a string."

// StringSchema is an ordered rule list for one string field.
type StringSchema struct {
	Field string
	Rules []Rule
}

// Validate accepts a string or *string. A nil *string is treated as "".
func (s StringSchema) Validate(data any) *Issue {
	var v string
	switch d := data.(type) {
	case string:
		v = d
	case *string:
		if d != nil {
			v = *d
		}
	default:
		return &Issue{Field: s.Field, Message: MsgExpectedString}
	}
	return s.check(v)
}

func (s StringSchema) check(v string) *Issue {
	v = strings.TrimSpace(v)
	for _, r := range s.Rules {
		if !r.Check(v) {
			return &Issue{Field: s.Field, Message: r.Message}
		}
	}
	return nil
}
