package validate

import "strings"

// PasswordConfirmation is the object PasswordWithConfirmation validates.
type PasswordConfirmation struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// PasswordWithConfirmation checks the password, then that the confirmation
// is present, then that both match. A mismatch is reported on
// confirmPassword, never on password.
var PasswordWithConfirmation Schema = passwordConfirmationSchema{}

type passwordConfirmationSchema struct{}

func (passwordConfirmationSchema) Validate(data any) *Issue {
	pc, issue := toPasswordConfirmation(data)
	if issue != nil {
		return issue
	}
	if issue := Password.check(pc.Password); issue != nil {
		return issue
	}
	if issue := confirmPassword.check(pc.ConfirmPassword); issue != nil {
		return issue
	}
	if strings.TrimSpace(pc.Password) != strings.TrimSpace(pc.ConfirmPassword) {
		return &Issue{Field: confirmPassword.Field, Message: MsgPasswordsDiffer}
	}
	return nil
}

// toPasswordConfirmation accepts the struct, a pointer to it, or a map keyed
// by the JSON field names. Missing keys read as "".
func toPasswordConfirmation(data any) (PasswordConfirmation, *Issue) {
	switch d := data.(type) {
	case PasswordConfirmation:
		return d, nil
	case *PasswordConfirmation:
		if d == nil {
			return PasswordConfirmation{}, nil
		}
		return *d, nil
	case map[string]string:
		return PasswordConfirmation{Password: d["password"], ConfirmPassword: d["confirmPassword"]}, nil
	case map[string]any:
		var pc PasswordConfirmation
		for _, f := range []struct {
			key string
			dst *string
		}{
			{"password", &pc.Password},
			{"confirmPassword", &pc.ConfirmPassword},
		} {
			raw, ok := d[f.key]
			if !ok || raw == nil {
				continue
			}
			s, ok := raw.(string)
			if !ok {
				return PasswordConfirmation{}, &Issue{Field: f.key, Message: MsgExpectedString}
			}
			*f.dst = s
		}
		return pc, nil
	default:
		return PasswordConfirmation{}, &Issue{Message: "Expected an object with password and confirmPassword."}
	}
}
