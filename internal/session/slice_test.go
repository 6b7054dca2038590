package session

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/luminacart/storefront/internal/api"
	"github.com/luminacart/storefront/pkg/auth"
	"github.com/luminacart/storefront/pkg/enums"
	pkgerrors "github.com/luminacart/storefront/pkg/errors"
	"github.com/luminacart/storefront/pkg/logger"
)

type stubAuthenticator struct {
	token    *auth.SessionToken
	err      error
	calls    int
	signOuts int
}

func (s *stubAuthenticator) Login(ctx context.Context, creds api.Credentials) (*auth.SessionToken, error) {
	s.calls++
	return s.token, s.err
}

func (s *stubAuthenticator) Signup(ctx context.Context, creds api.Credentials) (*auth.SessionToken, error) {
	s.calls++
	return s.token, s.err
}

func (s *stubAuthenticator) CheckSession(ctx context.Context) (*auth.SessionToken, error) {
	s.calls++
	return s.token, s.err
}

func (s *stubAuthenticator) SignOut(ctx context.Context, userID uuid.UUID) error {
	s.signOuts++
	return s.err
}

type stubSink struct {
	token string
}

func (s *stubSink) SetToken(token string) { s.token = token }
func (s *stubSink) ClearToken()           { s.token = "" }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func sampleToken() *auth.SessionToken {
	return &auth.SessionToken{Raw: "raw-token", UserID: uuid.New(), Role: enums.UserRoleUser}
}

func TestLoginInstallsToken(t *testing.T) {
	token := sampleToken()
	sink := &stubSink{}
	slice := NewSlice(&stubAuthenticator{token: token}, sink, testLogger())

	err := slice.Login(context.Background(), LoginInput{Email: "jo@example.test", Password: "hunter22"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.token != token.Raw {
		t.Fatalf("expected bearer token installed, got %q", sink.token)
	}
	state := slice.State()
	if state.Token == nil || state.Token.UserID != token.UserID {
		t.Fatalf("expected token in state, got %+v", state.Token)
	}
}

func TestLoginValidationSkipsNetwork(t *testing.T) {
	client := &stubAuthenticator{token: sampleToken()}
	slice := NewSlice(client, &stubSink{}, testLogger())

	tests := []LoginInput{
		{},
		{Email: "not-an-email", Password: "x"},
		{Email: "jo@example.test"},
	}
	for _, input := range tests {
		err := slice.Login(context.Background(), input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("input %+v: expected validation error, got %v", input, err)
		}
	}
	if client.calls != 0 {
		t.Fatalf("invalid credentials must not reach the network, got %d calls", client.calls)
	}
}

func TestSignupRequiresStrongPassword(t *testing.T) {
	slice := NewSlice(&stubAuthenticator{token: sampleToken()}, &stubSink{}, testLogger())

	err := slice.Signup(context.Background(), SignupInput{Email: "jo@example.test", Password: "short"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := slice.Signup(context.Background(), SignupInput{Email: "jo@example.test", Password: "long-enough"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoginFailureRecordsError(t *testing.T) {
	boom := pkgerrors.New(pkgerrors.CodeUnauthorized, "wrong password")
	slice := NewSlice(&stubAuthenticator{err: boom}, &stubSink{}, testLogger())

	err := slice.Login(context.Background(), LoginInput{Email: "jo@example.test", Password: "nope"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected login error surfaced, got %v", err)
	}
	state := slice.State()
	if state.Err == nil || state.Token != nil {
		t.Fatalf("expected recorded error and no token, got %+v", state)
	}
	if state.Status != enums.RequestStatusIdle {
		t.Fatalf("expected idle after failure, got %s", state.Status)
	}
}

func TestCheckRejectionMarksChecked(t *testing.T) {
	boom := pkgerrors.New(pkgerrors.CodeUnauthorized, "no session")
	slice := NewSlice(&stubAuthenticator{err: boom}, &stubSink{}, testLogger())

	if err := slice.Check(context.Background()); err != nil {
		t.Fatalf("session-check rejection must not surface an error, got %v", err)
	}
	state := slice.State()
	if !state.Checked {
		t.Fatal("expected check marked completed")
	}
	if state.Token != nil || state.Err != nil {
		t.Fatalf("rejected check leaves the slice signed out without error, got %+v", state)
	}
}

func TestCheckSuccessSetsTokenAndChecked(t *testing.T) {
	token := sampleToken()
	sink := &stubSink{}
	slice := NewSlice(&stubAuthenticator{token: token}, sink, testLogger())

	if err := slice.Check(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state := slice.State()
	if !state.Checked || state.Token == nil {
		t.Fatalf("expected checked with token, got %+v", state)
	}
	if sink.token != token.Raw {
		t.Fatalf("expected bearer token installed, got %q", sink.token)
	}
}

func TestSignOutClearsToken(t *testing.T) {
	token := sampleToken()
	sink := &stubSink{token: token.Raw}
	client := &stubAuthenticator{token: token}
	slice := NewSlice(client, sink, testLogger())

	if err := slice.Login(context.Background(), LoginInput{Email: "jo@example.test", Password: "hunter22"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := slice.SignOut(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.token != "" {
		t.Fatalf("expected bearer token cleared, got %q", sink.token)
	}
	if slice.State().Token != nil {
		t.Fatal("expected state token cleared")
	}
	if client.signOuts != 1 {
		t.Fatalf("expected one sign-out call, got %d", client.signOuts)
	}
}

func TestSignOutWithoutSessionIsNoop(t *testing.T) {
	client := &stubAuthenticator{}
	slice := NewSlice(client, &stubSink{}, testLogger())
	if err := slice.SignOut(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.signOuts != 0 {
		t.Fatal("expected no network call when signed out")
	}
}
