package router

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	authenticated bool
	admin         bool
}

func (f *fakeAuth) IsAuthenticated() bool { return f.authenticated }
func (f *fakeAuth) IsAdmin() bool         { return f.admin }

type alerts []string

func (a *alerts) Alert(msg string) { *a = append(*a, msg) }

func newTestNavigator(auth *fakeAuth) (*Navigator, *alerts) {
	a := &alerts{}
	return NewNavigator(DefaultTable(), auth, a, zerolog.Nop()), a
}

func TestNavigate_AnonymousToIngredientsGoesToLogin(t *testing.T) {
	nav, a := newTestNavigator(&fakeAuth{})

	res, err := nav.Navigate("/ingredients")
	require.NoError(t, err)

	assert.Equal(t, PathLogin, res.Route.Path)
	assert.True(t, res.Redirected())
	assert.Equal(t, PathLogin, nav.Current().Path)
	assert.Empty(t, *a)
}

func TestNavigate_NonAdminBlockedFromAdminUsers(t *testing.T) {
	nav, a := newTestNavigator(&fakeAuth{authenticated: true})

	res, err := nav.Navigate("/admin/users")
	require.NoError(t, err)

	assert.Equal(t, PathHome, res.Route.Path)
	require.NotEmpty(t, res.Decisions)
	assert.Equal(t, Block, res.Decisions[0].Outcome)
	assert.Equal(t, []string{MsgAdminOnly}, []string(*a))
}

func TestNavigate_SignedInBouncedOffLogin(t *testing.T) {
	nav, _ := newTestNavigator(&fakeAuth{authenticated: true})

	res, err := nav.Navigate("/login")
	require.NoError(t, err)
	assert.Equal(t, PathHome, res.Route.Path)
}

func TestNavigate_AllowedStaysPut(t *testing.T) {
	nav, _ := newTestNavigator(&fakeAuth{authenticated: true, admin: true})

	res, err := nav.Navigate("/admin/users/")
	require.NoError(t, err)
	assert.False(t, res.Redirected())
	assert.Equal(t, "/admin/users", nav.Current().Path)
	assert.Len(t, res.Decisions, 1)
}

func TestNavigate_UnknownRoute(t *testing.T) {
	nav, _ := newTestNavigator(&fakeAuth{})

	_, err := nav.Navigate("/nowhere")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestNavigate_RedirectLoop(t *testing.T) {
	table, err := NewTable(
		Route{Path: PathHome, Meta: Meta{RequiresAdmin: true}},
	)
	require.NoError(t, err)
	nav := NewNavigator(table, &fakeAuth{}, nil, zerolog.Nop())

	_, err = nav.Navigate(PathHome)
	assert.ErrorIs(t, err, ErrRedirectLoop)
}

func TestSessionExpired_NavigatesToLogin(t *testing.T) {
	auth := &fakeAuth{authenticated: true}
	nav, _ := newTestNavigator(auth)

	_, err := nav.Navigate("/recipes")
	require.NoError(t, err)
	require.Equal(t, "/recipes", nav.Current().Path)

	auth.authenticated = false
	nav.SessionExpired()
	assert.Equal(t, PathLogin, nav.Current().Path)
}

func TestNewTable_RejectsDuplicates(t *testing.T) {
	_, err := NewTable(Route{Path: "/a"}, Route{Path: "/a"})
	assert.Error(t, err)

	_, err = NewTable(Route{Path: "a"})
	assert.Error(t, err)
}

func TestTable_RoutesIsACopy(t *testing.T) {
	table := DefaultTable()
	routes := table.Routes()
	routes[0].Meta.RequiresAdmin = true

	home, err := table.Lookup(PathHome)
	require.NoError(t, err)
	assert.False(t, home.Meta.RequiresAdmin)
}
