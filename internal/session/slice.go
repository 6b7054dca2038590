// Package session holds the auth slice: the minimal identity+role token
// and the session-check flag. The full profile lives in the users slice.
package session

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/luminacart/storefront/internal/api"
	"github.com/luminacart/storefront/pkg/auth"
	"github.com/luminacart/storefront/pkg/enums"
	pkgerrors "github.com/luminacart/storefront/pkg/errors"
	"github.com/luminacart/storefront/pkg/logger"
	"github.com/luminacart/storefront/pkg/types"
)

// Authenticator is the remote API surface this slice consumes.
type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (*auth.SessionToken, error)
	Signup(ctx context.Context, creds api.Credentials) (*auth.SessionToken, error)
	CheckSession(ctx context.Context) (*auth.SessionToken, error)
	SignOut(ctx context.Context, userID uuid.UUID) error
}

// TokenSink receives the bearer token for authenticated API calls.
type TokenSink interface {
	SetToken(token string)
	ClearToken()
}

// LoginInput is validated locally before any network call.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// SignupInput is validated locally before any network call.
type SignupInput struct {
	Email    string         `validate:"required,email"`
	Password string         `validate:"required,min=8"`
	Address  *types.Address `validate:"omitempty"`
}

// State is the auth slice record. Checked reports that the initial session
// check has completed, successfully or not, so callers can stop waiting.
type State struct {
	Token   *auth.SessionToken
	Checked bool
	Status  enums.RequestStatus
	Err     error
}

type action interface{ isAction() }

type opStarted struct{}
type authSucceeded struct{ token *auth.SessionToken }
type authFailed struct{ err error }
type checkSucceeded struct{ token *auth.SessionToken }
type checkFailed struct{}
type signedOut struct{}

func (opStarted) isAction()      {}
func (authSucceeded) isAction()  {}
func (authFailed) isAction()     {}
func (checkSucceeded) isAction() {}
func (checkFailed) isAction()    {}
func (signedOut) isAction()      {}

func reduce(state State, act action) State {
	switch a := act.(type) {
	case opStarted:
		state.Status = enums.RequestStatusLoading
	case authSucceeded:
		state.Status = enums.RequestStatusIdle
		state.Token = a.token
		state.Err = nil
	case authFailed:
		state.Status = enums.RequestStatusIdle
		state.Err = a.err
	case checkSucceeded:
		state.Status = enums.RequestStatusIdle
		state.Token = a.token
		state.Checked = true
		state.Err = nil
	case checkFailed:
		// A rejected session check means "not signed in", not an error.
		state.Status = enums.RequestStatusIdle
		state.Checked = true
	case signedOut:
		state.Status = enums.RequestStatusIdle
		state.Token = nil
		state.Err = nil
	}
	return state
}

// Slice owns the auth state.
type Slice struct {
	client   Authenticator
	sink     TokenSink
	validate *validator.Validate
	log      *logger.Logger

	mu        sync.Mutex
	state     State
	listeners []func()
}

// NewSlice builds the auth slice.
func NewSlice(client Authenticator, sink TokenSink, log *logger.Logger) *Slice {
	return &Slice{
		client:   client,
		sink:     sink,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
		state:    State{Status: enums.RequestStatusIdle},
	}
}

// State returns a snapshot of the current slice state.
func (s *Slice) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a listener invoked after every applied action.
func (s *Slice) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Slice) dispatch(act action) {
	s.mu.Lock()
	s.state = reduce(s.state, act)
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Token returns the current session token, nil when signed out.
func (s *Slice) Token() *auth.SessionToken {
	return s.State().Token
}

// Login exchanges credentials for a session token and installs it on the
// API client. Bad credentials shapes never reach the network.
func (s *Slice) Login(ctx context.Context, input LoginInput) error {
	if err := s.validate.Struct(input); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid login credentials")
	}
	ctx = s.log.WithOperation(ctx, "session/login")
	s.dispatch(opStarted{})

	token, err := s.client.Login(ctx, api.Credentials{Email: input.Email, Password: input.Password})
	if err != nil {
		s.log.Error(ctx, "login failed", err)
		s.dispatch(authFailed{err: err})
		return err
	}
	s.sink.SetToken(token.Raw)
	s.dispatch(authSucceeded{token: token})
	return nil
}

// Signup registers a new user and signs them in.
func (s *Slice) Signup(ctx context.Context, input SignupInput) error {
	if err := s.validate.Struct(input); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid signup details")
	}
	ctx = s.log.WithOperation(ctx, "session/signup")
	s.dispatch(opStarted{})

	token, err := s.client.Signup(ctx, api.Credentials{
		Email:    input.Email,
		Password: input.Password,
		Address:  input.Address,
	})
	if err != nil {
		s.log.Error(ctx, "signup failed", err)
		s.dispatch(authFailed{err: err})
		return err
	}
	s.sink.SetToken(token.Raw)
	s.dispatch(authSucceeded{token: token})
	return nil
}

// Check validates any stored session against the API. A rejection marks
// the check completed and leaves the slice signed out.
func (s *Slice) Check(ctx context.Context) error {
	ctx = s.log.WithOperation(ctx, "session/check")
	s.dispatch(opStarted{})

	token, err := s.client.CheckSession(ctx)
	if err != nil {
		s.log.Warn(ctx, "session check rejected")
		s.dispatch(checkFailed{})
		return nil
	}
	s.sink.SetToken(token.Raw)
	s.dispatch(checkSucceeded{token: token})
	return nil
}

// SignOut invalidates the server-side session and clears the token.
func (s *Slice) SignOut(ctx context.Context) error {
	token := s.Token()
	if token == nil {
		return nil
	}
	ctx = s.log.WithOperation(ctx, "session/signout")
	s.dispatch(opStarted{})

	if err := s.client.SignOut(ctx, token.UserID); err != nil {
		s.log.Error(ctx, "sign out failed", err)
		s.dispatch(authFailed{err: err})
		return err
	}
	s.sink.ClearToken()
	s.dispatch(signedOut{})
	return nil
}
