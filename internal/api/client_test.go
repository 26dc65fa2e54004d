package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantryhub/pantry/internal/models"
	"github.com/pantryhub/pantry/internal/testutil"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	c, err := New(baseURL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)

	_, err = New("://nope")
	assert.Error(t, err)
}

func TestBearerToken_AttachedAndOverwrites(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	presetStale := func(req *http.Request) error {
		req.Header.Set(HeaderAuthorization, "Bearer stale")
		return nil
	}

	c := newTestClient(t, srv.URL, WithRequestDecorators(presetStale, BearerToken(staticToken("fresh"))))
	require.NoError(t, c.Get(context.Background(), "/anything", nil, nil))
	assert.Equal(t, "Bearer fresh", got)
}

func TestBearerToken_NoTokenNoHeader(t *testing.T) {
	var had bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, had = r.Header[HeaderAuthorization]
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithRequestDecorators(BearerToken(staticToken(""))))
	require.NoError(t, c.Get(context.Background(), "/anything", nil, nil))
	assert.False(t, had)
}

func TestRequestID_SetOncePerRequest(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get(HeaderRequestID))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithRequestDecorators(RequestID()))
	require.NoError(t, c.Get(context.Background(), "/a", nil, nil))
	require.NoError(t, c.Get(context.Background(), "/b", nil, nil))

	require.Len(t, ids, 2)
	assert.Len(t, ids[0], 26)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestDecoratorError_AbortsBeforeSend(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	boom := errors.New("boom")
	c := newTestClient(t, srv.URL, WithRequestDecorators(func(*http.Request) error { return boom }))

	err := c.Get(context.Background(), "/a", nil, nil)
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestSessionExpiry_SignalsAndStillFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	}))
	defer srv.Close()

	expired := 0
	c := newTestClient(t, srv.URL, WithResponseHandlers(SessionExpiry(func() { expired++ })))

	_, err := c.Ingredients().List(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, 1, expired)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Could not validate credentials", apiErr.Detail)
	assert.Equal(t, "/ingredients/", apiErr.Path)
}

func TestSessionExpiry_IgnoresOtherStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	expired := 0
	c := newTestClient(t, srv.URL, WithResponseHandlers(SessionExpiry(func() { expired++ })))

	err := c.Get(context.Background(), "/admin/users", nil, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 0, expired)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindClient},
		{http.StatusNotFound, KindClient},
		{http.StatusUnprocessableEntity, KindClient},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			err := c.Get(context.Background(), "/x", nil, nil)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url)
	err := c.Get(context.Background(), "/x", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithTimeout(20*time.Millisecond))
	err := c.Get(context.Background(), "/slow", nil, nil)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestValidationDetailList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","name"],"msg":"field required"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Ingredients().Create(context.Background(), models.IngredientInput{})

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Detail, "field required")
}

func TestBaseURLWithPathPrefix(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/api/")
	_, err := c.Recipes().Match(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/recipes/match/ingredients", path)
}

func TestSlugAndKeyAreEscapedAsOneSegment(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	c := newTestClient(t, srv.URL+"/api")
	_, err := c.News().GetBySlug(ctx, "a/b")
	require.NoError(t, err)
	_, err = c.Pages().GetPublic(ctx, "../admin")
	require.NoError(t, err)
	_, err = c.Pages().Update(ctx, "faq?x=1", models.PageInput{})
	require.NoError(t, err)
	require.NoError(t, c.Pages().Delete(ctx, "50% off"))

	assert.Equal(t, []string{
		"/api/news/public/a%2Fb",
		"/api/pages/public/..%2Fadmin",
		"/api/pages/faq%3Fx=1",
		"/api/pages/50%25%20off",
	}, paths)
}

func TestLogin_Encodings(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.AddUser("cook@example.com", "cook", "s3cret", false)

	tests := []struct {
		enc         LoginEncoding
		contentType string
		grantType   string
	}{
		{LoginMultipart, "multipart/form-data", ""},
		{LoginPasswordGrant, "application/x-www-form-urlencoded", "password"},
	}

	for _, tt := range tests {
		t.Run(string(tt.enc), func(t *testing.T) {
			c := newTestClient(t, backend.URL())

			tok, err := c.Auth().Login(context.Background(), "cook@example.com", "s3cret", tt.enc)
			require.NoError(t, err)
			assert.NotEmpty(t, tok.AccessToken)

			req, ok := backend.LastRequest("/auth/login")
			require.True(t, ok)
			assert.Equal(t, tt.contentType, req.ContentType)
			assert.Equal(t, "cook@example.com", req.Form["username"])
			assert.Equal(t, "s3cret", req.Form["password"])
			assert.Equal(t, tt.grantType, req.Form["grant_type"])
		})
	}
}

func TestLogin_BadCredentialsDoNotSignalExpiry(t *testing.T) {
	backend := testutil.NewBackend(t)

	expired := 0
	c := newTestClient(t, backend.URL(), WithResponseHandlers(SessionExpiry(func() { expired++ })))

	_, err := c.Auth().Login(context.Background(), "nobody@example.com", "x", LoginMultipart)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 0, expired)
}

func TestParseLoginEncoding(t *testing.T) {
	enc, err := ParseLoginEncoding("")
	require.NoError(t, err)
	assert.Equal(t, LoginMultipart, enc)

	enc, err = ParseLoginEncoding("password-grant")
	require.NoError(t, err)
	assert.Equal(t, LoginPasswordGrant, enc)

	_, err = ParseLoginEncoding("json")
	assert.Error(t, err)
}

// stallingServer sends headers and the start of a JSON body, then hangs until
// the client gives up.
func stallingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": 1, "email": "ana@`))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTimeoutWhileReadingBody_IsTransport(t *testing.T) {
	srv := stallingServer(t)

	c := newTestClient(t, srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Auth().Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Contains(t, err.Error(), "failed to read response")
}

func TestMalformedBody_IsNotTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Auth().Me(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTransport)
	assert.Equal(t, KindUnknown, KindOf(err))
}
