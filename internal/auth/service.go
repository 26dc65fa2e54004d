package auth

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pantryhub/pantry/internal/api"
	"github.com/pantryhub/pantry/internal/models"
	"github.com/pantryhub/pantry/internal/session"
)

const (
	MsgLoginFailed    = "Login failed, check your email and password."
	MsgSessionExpired = "Session expired, please login again."
)

// State of the client's authentication lifecycle
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// Notifier surfaces a blocking message to the user
type Notifier interface {
	Alert(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Alert(string) {}

// Options configures the auth service
type Options struct {
	Encoding api.LoginEncoding
	// StrictProfile logs out on any profile fetch failure, not just on
	// rejected credentials.
	StrictProfile bool
	Logger        zerolog.Logger
	Notifier      Notifier
}

// Service runs login, registration and logout against the backend and is the
// only writer of the session.
type Service struct {
	session  *session.Session
	client   *api.Client
	validate *validator.Validate
	opts     Options
	log      zerolog.Logger
	notifier Notifier

	inflight atomic.Int32
}

func NewService(sess *session.Session, client *api.Client, opts Options) *Service {
	if opts.Encoding == "" {
		opts.Encoding = api.LoginMultipart
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &Service{
		session:  sess,
		client:   client,
		validate: validator.New(),
		opts:     opts,
		log:      opts.Logger,
		notifier: notifier,
	}
}

// State reports where the client is in the login lifecycle. A held token
// always wins over an in-flight login.
func (s *Service) State() State {
	switch {
	case s.session.IsAuthenticated():
		return StateAuthenticated
	case s.inflight.Load() > 0:
		return StateAuthenticating
	default:
		return StateAnonymous
	}
}

// Login exchanges credentials for a token, stores it and fetches the profile.
// Failures are logged and alerted, never returned. Concurrent logins are not
// serialized; whichever finishes last owns the session.
func (s *Service) Login(ctx context.Context, identifier, secret string) bool {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	tok, err := s.client.Auth().Login(ctx, identifier, secret, s.opts.Encoding)
	if err != nil {
		s.log.Warn().Err(err).Str("identifier", identifier).Msg("Login failed")
		s.notifier.Alert(MsgLoginFailed)
		return false
	}

	if err := s.session.SaveToken(tok.AccessToken); err != nil {
		s.log.Error().Err(err).Msg("Failed to save token")
		s.notifier.Alert(MsgLoginFailed)
		return false
	}

	if err := s.FetchCurrentUser(ctx); err != nil && !s.session.IsAuthenticated() {
		return false
	}

	s.log.Info().Str("identifier", identifier).Msg("Logged in")
	return true
}

// Register creates an account and then logs in with the same credentials.
// Registration errors are returned to the caller.
func (s *Service) Register(ctx context.Context, email, username, secret string) (bool, error) {
	req := models.RegisterRequest{
		Email:    email,
		Username: username,
		Password: secret,
	}
	if err := s.validate.Struct(&req); err != nil {
		return false, fmt.Errorf("invalid registration: %w", err)
	}

	if _, err := s.client.Auth().Register(ctx, req); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("Registration failed")
		return false, fmt.Errorf("registration failed: %w", err)
	}

	return s.Login(ctx, email, secret), nil
}

// FetchCurrentUser loads the profile of the token owner into the session.
//
// When the backend rejects the token (401 or 403), or answers with something
// that isn't a profile, the session is cleared and the user is told to log in
// again. Expiry subscribers are expected to alert on 401 themselves.
// Every other failure leaves the session alone unless StrictProfile is set.
func (s *Service) FetchCurrentUser(ctx context.Context) error {
	user, err := s.client.Auth().Me(ctx)
	if err == nil {
		s.session.SetUser(user)
		return nil
	}

	kind := api.KindOf(err)
	s.log.Warn().Err(err).Str("kind", kind.String()).Msg("Failed to fetch user")

	var apiErr *api.Error
	undecodable := kind == api.KindUnknown && !errors.As(err, &apiErr) && !errors.Is(err, context.Canceled)
	if !api.IsAuthFailure(err) && !undecodable && !s.opts.StrictProfile {
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	// A 401 has usually cleared the session through the expiry signal already,
	// which does its own alerting.
	if s.session.IsAuthenticated() {
		s.notifier.Alert(MsgSessionExpired)
	}
	if logoutErr := s.Logout(); logoutErr != nil {
		s.log.Error().Err(logoutErr).Msg("Failed to clear session")
	}
	return fmt.Errorf("failed to fetch user: %w", err)
}

// Logout drops the token and the profile from memory and storage.
func (s *Service) Logout() error {
	if err := s.session.Logout(); err != nil {
		return err
	}
	s.log.Debug().Msg("Session cleared")
	return nil
}
