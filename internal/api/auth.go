package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/pantryhub/pantry/internal/models"
)

// LoginEncoding selects how credentials are sent to /auth/login. The backend
// has been observed accepting both; which one is authoritative is a
// deployment decision.
type LoginEncoding string

const (
	// LoginMultipart sends multipart/form-data fields username and password.
	LoginMultipart LoginEncoding = "multipart"
	// LoginPasswordGrant sends an OAuth2 password grant as
	// application/x-www-form-urlencoded.
	LoginPasswordGrant LoginEncoding = "password-grant"
)

// ParseLoginEncoding validates a configured encoding name. Empty selects multipart.
func ParseLoginEncoding(s string) (LoginEncoding, error) {
	switch LoginEncoding(s) {
	case "", LoginMultipart:
		return LoginMultipart, nil
	case LoginPasswordGrant:
		return LoginPasswordGrant, nil
	default:
		return "", fmt.Errorf("invalid login encoding %q, must be one of: %s, %s", s, LoginMultipart, LoginPasswordGrant)
	}
}

func (e LoginEncoding) encode(username, password string) (*payload, error) {
	switch e {
	case LoginPasswordGrant:
		return formPayload(url.Values{
			"grant_type": {"password"},
			"username":   {username},
			"password":   {password},
		}), nil
	case LoginMultipart, "":
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if err := w.WriteField("username", username); err != nil {
			return nil, fmt.Errorf("failed to encode credentials: %w", err)
		}
		if err := w.WriteField("password", password); err != nil {
			return nil, fmt.Errorf("failed to encode credentials: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode credentials: %w", err)
		}
		return &payload{reader: &buf, contentType: w.FormDataContentType()}, nil
	default:
		return nil, fmt.Errorf("unsupported login encoding %q", e)
	}
}

type AuthService struct {
	c *Client
}

// Login exchanges credentials for an access token. A 401 here means bad
// credentials, so it never raises the session-expired signal.
func (s *AuthService) Login(ctx context.Context, username, password string, enc LoginEncoding) (*models.Token, error) {
	p, err := enc.encode(username, password)
	if err != nil {
		return nil, err
	}

	var out models.Token
	if err := s.c.send(withoutSessionExpiry(ctx), http.MethodPost, "/auth/login", nil, p, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("login response did not include an access token")
	}
	return &out, nil
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	p, err := jsonPayload(req)
	if err != nil {
		return nil, err
	}

	var out models.User
	if err := s.c.send(withoutSessionExpiry(ctx), http.MethodPost, "/auth/register", nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile of the principal owning the current token
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := s.c.Get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
