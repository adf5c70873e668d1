// Package account wraps the BuzzChat /v1 auth and user endpoints on top of
// apiclient. Forms are validated locally first; nothing is sent when a field
// fails, and the *validate.Issue is returned instead.
package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raysh454/buzzclient/internal/apiclient"
	"github.com/raysh454/buzzclient/internal/logging"
	"github.com/raysh454/buzzclient/internal/navigation"
	"github.com/raysh454/buzzclient/internal/session"
	"github.com/raysh454/buzzclient/internal/validate"
)

// ErrNotSignedIn is returned by CurrentUser when no user is stored.
var ErrNotSignedIn = errors.New("not signed in")

// User is the public shape the API returns for a user.
type User struct {
	ID         string    `json:"userId"`
	Username   string    `json:"username"`
	Name       string    `json:"name,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	ProfilePic string    `json:"profilePic,omitempty"`
	Email      string    `json:"email,omitempty"`
	Activated  bool      `json:"activated,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
	UpdatedAt  time.Time `json:"updatedAt,omitzero"`
}

type userEnvelope struct {
	User User `json:"user"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

// Health is the body of GET /v1/healthcheck.
type Health struct {
	Status string `json:"status"`
}

// Navigator receives redirect targets.
type Navigator interface {
	Goto(path string)
}

// Notifier shows messages to the user.
type Notifier interface {
	TriggerError(message any)
	TriggerInfo(message any)
}

// Service exposes the account operations.
type Service struct {
	api     *apiclient.Client
	session session.Storage
	nav     Navigator
	notify  Notifier
	logger  logging.Logger
}

// NewService wires a Service. logger may be nil.
func NewService(api *apiclient.Client, store session.Storage, nav Navigator, notify Notifier, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		api:     api,
		session: store,
		nav:     nav,
		notify:  notify,
		logger:  logger.With(logging.Field{Key: "component", Value: "account"}),
	}
}

// Health pings the API.
func (s *Service) Health(ctx context.Context) (Health, error) {
	var h Health
	res := apiclient.Call(ctx, s.api, apiclient.Options[Health]{
		Endpoint:  "/v1/healthcheck",
		OnSuccess: func(v Health) { h = v },
	})
	return h, res.Err()
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Name            string
	Bio             string
}

// Validate returns the first failing field in form order.
func (f RegisterForm) Validate() *validate.Issue {
	checks := []struct {
		schema validate.Schema
		value  any
	}{
		{validate.Username, f.Username},
		{validate.Email, f.Email},
		{validate.PasswordWithConfirmation, validate.PasswordConfirmation{Password: f.Password, ConfirmPassword: f.ConfirmPassword}},
		{validate.Name, f.Name},
		{validate.Bio, f.Bio},
	}
	for _, c := range checks {
		if issue := c.schema.Validate(c.value); issue != nil {
			return issue
		}
	}
	return nil
}

type registerRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
}

// Register creates an account and shows the server's confirmation message on
// the info channel. It returns that message.
func (s *Service) Register(ctx context.Context, form RegisterForm) (string, error) {
	if issue := form.Validate(); issue != nil {
		return "", issue
	}

	var msg string
	res := apiclient.Call(ctx, s.api, apiclient.Options[messageEnvelope]{
		Endpoint: "/v1/auth/register",
		Method:   apiclient.MethodPost,
		Data: registerRequest{
			Username: strings.TrimSpace(form.Username),
			Email:    strings.TrimSpace(form.Email),
			Password: form.Password,
			Name:     optional(form.Name),
			Bio:      optional(form.Bio),
		},
		OnSuccess: func(m messageEnvelope) {
			msg = m.Message
			if msg != "" {
				s.notify.TriggerInfo(msg)
			}
		},
	})
	return msg, res.Err()
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// LoginForm is the sign-in form. Identifier is a username or an email.
type LoginForm struct {
	Identifier string
	Password   string
}

func (f LoginForm) Validate() *validate.Issue {
	if issue := validate.UsernameOrEmail.Validate(f.Identifier); issue != nil {
		return issue
	}
	return validate.Password.Validate(f.Password)
}

// Login authenticates, keeps the auth cookie in the client's jar and stores
// the returned user in session storage.
func (s *Service) Login(ctx context.Context, form LoginForm) (*User, error) {
	if issue := form.Validate(); issue != nil {
		return nil, issue
	}

	var user *User
	res := apiclient.Call(ctx, s.api, apiclient.Options[userEnvelope]{
		Endpoint:    "/v1/auth/login",
		Method:      apiclient.MethodPost,
		Credentials: apiclient.CredentialsInclude,
		Data: map[string]string{
			"username": strings.TrimSpace(form.Identifier),
			"password": form.Password,
		},
		OnSuccess: func(env userEnvelope) { user = &env.User },
	})
	if err := res.Err(); err != nil {
		return nil, err
	}
	if err := s.remember(ctx, user); err != nil {
		return user, err
	}
	s.logger.Info("signed in", logging.Field{Key: "username", Value: user.Username})
	return user, nil
}

// Logout forgets the local session and returns to the root page.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.nav.Goto(navigation.Root)
	return nil
}

// CurrentUser returns the user stored by the last Login or Me.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	raw, err := s.session.Get(ctx, session.KeyUser)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode stored user: %w", err)
	}
	return &u, nil
}

// Me fetches the signed-in user's profile and refreshes the stored copy.
func (s *Service) Me(ctx context.Context) (*User, error) {
	var user *User
	res := apiclient.Call(ctx, s.api, apiclient.Options[userEnvelope]{
		Endpoint:    "/v1/users/me",
		Credentials: apiclient.CredentialsInclude,
		OnSuccess:   func(env userEnvelope) { user = &env.User },
	})
	if err := res.Err(); err != nil {
		return nil, err
	}
	if err := s.remember(ctx, user); err != nil {
		return user, err
	}
	return user, nil
}

// GetUser fetches another user's public profile.
func (s *Service) GetUser(ctx context.Context, username string) (*User, error) {
	if issue := validate.Username.Validate(username); issue != nil {
		return nil, issue
	}
	var user *User
	res := apiclient.Call(ctx, s.api, apiclient.Options[userEnvelope]{
		Endpoint:    "/v1/users/" + url.PathEscape(strings.TrimSpace(username)),
		Credentials: apiclient.CredentialsInclude,
		OnSuccess:   func(env userEnvelope) { user = &env.User },
	})
	return user, res.Err()
}

// CheckUsername reports whether username is free. A taken name is not an
// error and raises no notification.
func (s *Service) CheckUsername(ctx context.Context, username string) (bool, error) {
	if issue := validate.Username.Validate(username); issue != nil {
		return false, issue
	}
	return s.checkAvailable(ctx, "/v1/users/check-username", "username", username)
}

// CheckEmail reports whether email is free.
func (s *Service) CheckEmail(ctx context.Context, email string) (bool, error) {
	if issue := validate.Email.Validate(email); issue != nil {
		return false, issue
	}
	return s.checkAvailable(ctx, "/v1/users/check-email", "email", email)
}

func (s *Service) checkAvailable(ctx context.Context, endpoint, param, value string) (bool, error) {
	q := url.Values{}
	q.Set(param, strings.TrimSpace(value))

	res := apiclient.Call(ctx, s.api, apiclient.Options[json.RawMessage]{
		Endpoint: endpoint + "?" + q.Encode(),
		OnError:  func(apiclient.Payload) {},
	})
	switch {
	case res.OK():
		return true, nil
	case res.StatusCode == http.StatusConflict:
		return false, nil
	case res.Outcome == apiclient.OutcomeHTTPError && res.StatusCode != http.StatusUnauthorized && res.StatusCode != http.StatusUnprocessableEntity:
		// OnError swallowed the notification for everything but 409.
		s.notify.TriggerError(res.Payload.ErrorField())
	}
	return false, res.Err()
}

func (s *Service) remember(ctx context.Context, user *User) error {
	if user == nil {
		return nil
	}
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.session.Set(ctx, session.KeyUser, string(b)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}
