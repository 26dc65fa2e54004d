package router

import (
	"errors"
	"fmt"
	"strings"
)

const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
)

var ErrRouteNotFound = errors.New("route not found")

// Meta declares what a route requires of the session
type Meta struct {
	RequiresAuth  bool
	RequiresAdmin bool
}

// Route describes one navigable view
type Route struct {
	Path  string
	Name  string
	Title string
	Meta  Meta
}

// Table is the fixed set of routes. It cannot be modified after NewTable.
type Table struct {
	routes []Route
	byPath map[string]int
}

// NewTable builds a table, rejecting duplicate or malformed paths
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{
		routes: make([]Route, 0, len(routes)),
		byPath: make(map[string]int, len(routes)),
	}
	for _, r := range routes {
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("route %q: path must start with /", r.Path)
		}
		if _, dup := t.byPath[r.Path]; dup {
			return nil, fmt.Errorf("route %q: duplicate path", r.Path)
		}
		t.byPath[r.Path] = len(t.routes)
		t.routes = append(t.routes, r)
	}
	return t, nil
}

// Lookup finds the route for path. A trailing slash is ignored.
func (t *Table) Lookup(path string) (Route, error) {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	i, ok := t.byPath[path]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}
	return t.routes[i], nil
}

// Routes returns a copy of all routes in declaration order
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// DefaultTable returns the application's routes
func DefaultTable() *Table {
	auth := Meta{RequiresAuth: true}
	admin := Meta{RequiresAuth: true, RequiresAdmin: true}

	t, err := NewTable(
		Route{Path: PathHome, Name: "dashboard", Title: "Dashboard"},
		Route{Path: "/ingredients", Name: "ingredients", Title: "Ingredients", Meta: auth},
		Route{Path: "/shopping", Name: "shopping", Title: "Shopping lists", Meta: auth},
		Route{Path: "/recipes", Name: "recipes", Title: "Recipes", Meta: auth},
		Route{Path: "/news", Name: "news", Title: "News"},
		Route{Path: "/pages", Name: "pages", Title: "Pages"},
		Route{Path: PathLogin, Name: "login", Title: "Login"},
		Route{Path: PathRegister, Name: "register", Title: "Register"},
		Route{Path: "/admin/users", Name: "admin-users", Title: "Users", Meta: admin},
		Route{Path: "/admin/news", Name: "admin-news", Title: "News admin", Meta: admin},
		Route{Path: "/admin/pages", Name: "admin-pages", Title: "Pages admin", Meta: admin},
	)
	if err != nil {
		// The literal table above is known good
		panic(err)
	}
	return t
}
