package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/oklog/ulid/v2"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
)

// RequestDecorator modifies an outgoing request. Decorators run in the order
// they were registered; an error aborts the call before anything is sent.
type RequestDecorator func(req *http.Request) error

// ResponseHandler observes a received response before its status is checked.
// Handlers run in registration order and must not consume the body.
type ResponseHandler func(resp *http.Response) error

// TokenSource yields the current bearer token, "" when there is none.
type TokenSource interface {
	Token() string
}

// BearerToken attaches the current token to every request, replacing any
// Authorization header already present. No header is added without a token.
func BearerToken(src TokenSource) RequestDecorator {
	return func(req *http.Request) error {
		if token := src.Token(); token != "" {
			req.Header.Set(HeaderAuthorization, fmt.Sprintf("Bearer %s", token))
		}
		return nil
	}
}

// RequestID tags requests with a fresh ULID unless the caller set one.
func RequestID() RequestDecorator {
	return func(req *http.Request) error {
		if req.Header.Get(HeaderRequestID) == "" {
			req.Header.Set(HeaderRequestID, ulid.Make().String())
		}
		return nil
	}
}

func UserAgent(ua string) RequestDecorator {
	return func(req *http.Request) error {
		req.Header.Set("User-Agent", ua)
		return nil
	}
}

type skipExpiryKey struct{}

// withoutSessionExpiry marks calls whose 401 means "bad credentials" rather
// than "session expired", such as the login request itself.
func withoutSessionExpiry(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipExpiryKey{}, true)
}

// SessionExpiry calls onExpired when the backend answers 401. The call itself
// still fails with an *Error so the caller sees the rejection.
func SessionExpiry(onExpired func()) ResponseHandler {
	return func(resp *http.Response) error {
		if resp.StatusCode != http.StatusUnauthorized {
			return nil
		}
		if resp.Request != nil {
			if skip, _ := resp.Request.Context().Value(skipExpiryKey{}).(bool); skip {
				return nil
			}
		}
		onExpired()
		return nil
	}
}
