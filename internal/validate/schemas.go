package validate

import "regexp"

var (
	UsernameRX = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	EmailRX    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

const (
	MsgUsernameRequired = "Username is required!"
	MsgUsernameLength   = "Username must be less than 30 characters."
	MsgUsernameChars    = "Username should only contain alphanumeric characters and underscores"

	MsgPasswordRequired = "Password is required!"
	MsgPasswordShort    = "Password must be at least 8 characters."
	MsgPasswordLong     = "Password must be at most 72 characters."

	MsgEmailRequired = "Email is required!"
	MsgEmailInvalid  = "Enter a valid email!"

	MsgNameLength = "Name must be less than 50 characters."
	MsgBioLength  = "Bio must be less than 300 characters."

	MsgLoginRequired = "Username or email is required!"
	MsgLoginInvalid  = "Enter a valid username or email!"

	MsgConfirmRequired = "Confirm Password is required!"
	MsgPasswordsDiffer = "Passwords do not match!"
)

const (
	MaxUsernameLen = 30
	MinPasswordLen = 8
	// MaxPasswordLen is bcrypt's input limit on the server.
	MaxPasswordLen = 72
	MaxNameLen     = 50
	MaxBioLen      = 300
)

var passwordRules = []Rule{
	Required(MsgPasswordRequired),
	MinLen(MinPasswordLen, MsgPasswordShort),
	MaxLen(MaxPasswordLen, MsgPasswordLong),
}

var (
	Username = StringSchema{
		Field: "username",
		Rules: []Rule{
			Required(MsgUsernameRequired),
			MaxLen(MaxUsernameLen, MsgUsernameLength),
			Matches(UsernameRX, MsgUsernameChars),
		},
	}

	Password = StringSchema{
		Field: "password",
		Rules: passwordRules,
	}

	Email = StringSchema{
		Field: "email",
		Rules: []Rule{
			Required(MsgEmailRequired),
			Matches(EmailRX, MsgEmailInvalid),
		},
	}

	// Name is optional.
	Name = StringSchema{
		Field: "name",
		Rules: []Rule{MaxLen(MaxNameLen, MsgNameLength)},
	}

	// Bio is optional.
	Bio = StringSchema{
		Field: "bio",
		Rules: []Rule{MaxLen(MaxBioLen, MsgBioLength)},
	}

	// UsernameOrEmail is the login identifier field.
	UsernameOrEmail = StringSchema{
		Field: "username",
		Rules: []Rule{
			Required(MsgLoginRequired),
			OneOf(MsgLoginInvalid,
				Rule{Check: func(s string) bool {
					return len(s) <= MaxUsernameLen && UsernameRX.MatchString(s)
				}},
				Matches(EmailRX, ""),
			),
		},
	}

	confirmPassword = StringSchema{
		Field: "confirmPassword",
		Rules: []Rule{Required(MsgConfirmRequired)},
	}
)

// Schemas lists the named schemas, e.g. for looking one up from a request path.
var Schemas = map[string]Schema{
	"username":                 Username,
	"password":                 Password,
	"email":                    Email,
	"name":                     Name,
	"bio":                      Bio,
	"usernameOrEmail":          UsernameOrEmail,
	"passwordWithConfirmation": PasswordWithConfirmation,
}

// Lookup returns the schema registered under name.
func Lookup(name string) (Schema, bool) {
	s, ok := Schemas[name]
	return s, ok
}
