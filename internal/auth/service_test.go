package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantryhub/pantry/internal/api"
	"github.com/pantryhub/pantry/internal/session"
	"github.com/pantryhub/pantry/internal/testutil"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingNotifier) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

type fixture struct {
	backend  *testutil.Backend
	storage  *session.MemoryStorage
	session  *session.Session
	service  *Service
	notifier *recordingNotifier
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	backend := testutil.NewBackend(t)
	storage := session.NewMemoryStorage()
	sess, err := session.New(storage)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	sess.OnExpired(func() { notifier.Alert(MsgSessionExpired) })

	client, err := api.New(backend.URL(),
		api.WithRequestDecorators(api.BearerToken(sess)),
		api.WithResponseHandlers(api.SessionExpiry(func() { _ = sess.Expire() })),
	)
	require.NoError(t, err)

	opts.Notifier = notifier
	opts.Logger = zerolog.Nop()

	return &fixture{
		backend:  backend,
		storage:  storage,
		session:  sess,
		service:  NewService(sess, client, opts),
		notifier: notifier,
	}
}

func TestLogin_StoresTokenAndFetchesProfile(t *testing.T) {
	for _, enc := range []api.LoginEncoding{api.LoginMultipart, api.LoginPasswordGrant} {
		t.Run(string(enc), func(t *testing.T) {
			f := newFixture(t, Options{Encoding: enc})
			f.backend.AddUser("ana@example.com", "ana", "pw", false)

			ok := f.service.Login(context.Background(), "ana@example.com", "pw")
			require.True(t, ok)

			assert.Equal(t, StateAuthenticated, f.service.State())
			assert.NotEmpty(t, f.session.Token())
			require.NotNil(t, f.session.User())
			assert.Equal(t, "ana", f.session.User().Username)
			assert.False(t, f.session.IsAdmin())

			persisted, err := f.storage.Load(session.TokenKey)
			require.NoError(t, err)
			assert.Equal(t, f.session.Token(), persisted)

			me, ok := f.backend.LastRequest("/auth/me")
			require.True(t, ok)
			assert.Equal(t, "Bearer "+persisted, me.Header.Get("Authorization"))
			assert.Empty(t, f.notifier.Messages())
		})
	}
}

func TestLogin_FailureReportsFalse(t *testing.T) {
	f := newFixture(t, Options{})
	f.backend.AddUser("ana@example.com", "ana", "pw", false)

	ok := f.service.Login(context.Background(), "ana@example.com", "wrong")
	assert.False(t, ok)
	assert.Equal(t, StateAnonymous, f.service.State())
	assert.Empty(t, f.session.Token())
	assert.Equal(t, []string{MsgLoginFailed}, f.notifier.Messages())

	_, err := f.storage.Load(session.TokenKey)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLogin_ReportsAuthenticatingWhileInFlight(t *testing.T) {
	f := newFixture(t, Options{})
	f.backend.AddUser("ana@example.com", "ana", "pw", false)
	f.backend.SlowLogin(150 * time.Millisecond)

	done := make(chan bool)
	go func() { done <- f.service.Login(context.Background(), "ana@example.com", "pw") }()

	assert.Eventually(t, func() bool {
		return f.service.State() == StateAuthenticating
	}, time.Second, 5*time.Millisecond)

	assert.True(t, <-done)
	assert.Equal(t, StateAuthenticated, f.service.State())
}

func TestLogin_ConcurrentLastWriterWins(t *testing.T) {
	f := newFixture(t, Options{})
	for i := 0; i < 5; i++ {
		f.backend.AddUser(fmt.Sprintf("user%d@example.com", i), fmt.Sprintf("user%d", i), "pw", false)
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.service.Login(context.Background(), fmt.Sprintf("user%d@example.com", i), "pw")
		}(i)
	}
	wg.Wait()

	// Some login won; memory and storage agree on which one
	require.True(t, f.session.IsAuthenticated())
	persisted, err := f.storage.Load(session.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, f.session.Token(), persisted)

	info, err := InspectToken(persisted)
	require.NoError(t, err)
	assert.Contains(t, info.Subject, "@example.com")
}

func TestRegister_ChainsIntoLogin(t *testing.T) {
	f := newFixture(t, Options{})

	ok, err := f.service.Register(context.Background(), "new@example.com", "newbie", "pw")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "newbie", f.session.User().Username)

	login, found := f.backend.LastRequest("/auth/login")
	require.True(t, found)
	assert.Equal(t, "new@example.com", login.Form["username"])
}

func TestRegister_PropagatesBackendError(t *testing.T) {
	f := newFixture(t, Options{})
	f.backend.AddUser("taken@example.com", "taken", "pw", false)

	ok, err := f.service.Register(context.Background(), "taken@example.com", "other", "pw")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "Email already registered")
	assert.False(t, f.session.IsAuthenticated())
}

func TestRegister_ValidatesInput(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.service.Register(context.Background(), "not-an-email", "u", "pw")
	require.Error(t, err)

	_, found := f.backend.LastRequest("/auth/register")
	assert.False(t, found, "invalid input must not reach the backend")
}

func TestFetchCurrentUser_UnauthorizedClearsSession(t *testing.T) {
	f := newFixture(t, Options{})
	f.backend.AddUser("ana@example.com", "ana", "pw", false)
	require.True(t, f.service.Login(context.Background(), "ana@example.com", "pw"))

	f.backend.Revoke(f.session.Token())

	err := f.service.FetchCurrentUser(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	assert.Empty(t, f.session.Token())
	assert.Nil(t, f.session.User())
	assert.False(t, f.session.IsAuthenticated())
	assert.Equal(t, StateAnonymous, f.service.State())
	assert.Equal(t, []string{MsgSessionExpired}, f.notifier.Messages())

	_, err = f.storage.Load(session.TokenKey)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestFetchCurrentUser_ServerErrorKeepsSession(t *testing.T) {
	f := newFixture(t, Options{})
	f.backend.AddUser("ana@example.com", "ana", "pw", false)
	require.True(t, f.service.Login(context.Background(), "ana@example.com", "pw"))

	f.backend.FailProfile(http.StatusServiceUnavailable)

	err := f.service.FetchCurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, api.KindServer, api.KindOf(err))
	assert.True(t, f.session.IsAuthenticated())
	assert.Empty(t, f.notifier.Messages())
}

func TestFetchCurrentUser_StrictModeLogsOutOnAnyFailure(t *testing.T) {
	f := newFixture(t, Options{StrictProfile: true})
	f.backend.AddUser("ana@example.com", "ana", "pw", false)
	require.True(t, f.service.Login(context.Background(), "ana@example.com", "pw"))

	f.backend.FailProfile(http.StatusInternalServerError)

	require.Error(t, f.service.FetchCurrentUser(context.Background()))
	assert.False(t, f.session.IsAuthenticated())
	assert.Equal(t, []string{MsgSessionExpired}, f.notifier.Messages())
}

func TestLogin_ProfileRejectedMeansNotLoggedIn(t *testing.T) {
	f := newFixture(t, Options{})
	f.backend.AddUser("ana@example.com", "ana", "pw", false)
	f.backend.FailProfile(http.StatusUnauthorized)

	assert.False(t, f.service.Login(context.Background(), "ana@example.com", "pw"))
	assert.False(t, f.session.IsAuthenticated())
}

func TestLogout(t *testing.T) {
	f := newFixture(t, Options{})
	f.backend.AddUser("ana@example.com", "ana", "pw", true)
	require.True(t, f.service.Login(context.Background(), "ana@example.com", "pw"))
	require.True(t, f.session.IsAdmin())

	require.NoError(t, f.service.Logout())

	assert.Empty(t, f.session.Token())
	assert.Nil(t, f.session.User())
	assert.False(t, f.session.IsAdmin())
	assert.Equal(t, StateAnonymous, f.service.State())
}

func newStubService(t *testing.T, handler http.HandlerFunc, opts ...api.Option) (*Service, *session.Session) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess, err := session.New(session.NewMemoryStorage())
	require.NoError(t, err)

	client, err := api.New(srv.URL, append([]api.Option{api.WithRequestDecorators(api.BearerToken(sess))}, opts...)...)
	require.NoError(t, err)

	return NewService(sess, client, Options{Logger: zerolog.Nop()}), sess
}

func TestLogin_AcceptsOffsetlessBackendTimestamps(t *testing.T) {
	svc, sess := newStubService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
		case "/auth/me":
			w.Write([]byte(`{"id":1,"email":"ana@example.com","username":"ana","is_admin":false,` +
				`"is_active":true,"created_at":"2024-05-01T10:00:00.123456","last_login":"2024-05-02T08:30:00"}`))
		default:
			http.NotFound(w, r)
		}
	})

	require.True(t, svc.Login(context.Background(), "ana@example.com", "pw"))
	require.NotNil(t, sess.User())
	assert.Equal(t, time.Date(2024, time.May, 1, 10, 0, 0, 123456000, time.UTC), sess.User().CreatedAt.Time)
	require.NotNil(t, sess.User().LastLogin)
	assert.Equal(t, 8, sess.User().LastLogin.Hour())
}

func TestFetchCurrentUser_BodyTimeoutKeepsSession(t *testing.T) {
	svc, sess := newStubService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":1,"email":`))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}, api.WithTimeout(50*time.Millisecond))
	require.NoError(t, sess.SaveToken("tok"))

	err := svc.FetchCurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, api.KindTransport, api.KindOf(err))
	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, "tok", sess.Token())
}

func TestFetchCurrentUser_NotFoundKeepsSession(t *testing.T) {
	svc, sess := newStubService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not Found"}`))
	})
	require.NoError(t, sess.SaveToken("tok"))

	err := svc.FetchCurrentUser(context.Background())
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.True(t, sess.IsAuthenticated())
}

func TestFetchCurrentUser_ForbiddenAndGarbageClearSession(t *testing.T) {
	for name, handler := range map[string]http.HandlerFunc{
		"forbidden": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"detail":"Inactive user"}`))
		},
		"undecodable": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>login</html>`))
		},
	} {
		t.Run(name, func(t *testing.T) {
			svc, sess := newStubService(t, handler)
			require.NoError(t, sess.SaveToken("tok"))

			require.Error(t, svc.FetchCurrentUser(context.Background()))
			assert.False(t, sess.IsAuthenticated())
		})
	}
}
