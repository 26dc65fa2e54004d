package router

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

const maxRedirects = 5

var ErrRedirectLoop = errors.New("too many redirects")

// AuthState is the read side of the session consulted before each navigation
type AuthState interface {
	IsAuthenticated() bool
	IsAdmin() bool
}

// Notifier surfaces a blocking message to the user
type Notifier interface {
	Alert(msg string)
}

// Result describes a completed navigation
type Result struct {
	Requested string
	Route     Route
	// Decisions holds the verdict for each hop, starting with the requested path.
	Decisions []Decision
}

// Redirected reports whether the user ended up somewhere other than requested
func (r Result) Redirected() bool {
	return r.Route.Path != r.Requested
}

// Navigator applies the guard to every route change and tracks the current route.
type Navigator struct {
	table    *Table
	auth     AuthState
	notifier Notifier
	log      zerolog.Logger

	mu      sync.Mutex
	current Route
}

func NewNavigator(table *Table, auth AuthState, notifier Notifier, log zerolog.Logger) *Navigator {
	return &Navigator{
		table:    table,
		auth:     auth,
		notifier: notifier,
		log:      log,
	}
}

// Navigate resolves path, following guard redirects until a route is allowed.
func (n *Navigator) Navigate(path string) (Result, error) {
	res := Result{Requested: path}

	for hop := 0; hop <= maxRedirects; hop++ {
		route, err := n.table.Lookup(path)
		if err != nil {
			return res, err
		}
		if hop == 0 {
			res.Requested = route.Path
		}

		d := Guard(route, n.auth.IsAuthenticated(), n.auth.IsAdmin())
		res.Decisions = append(res.Decisions, d)

		n.log.Debug().
			Str("path", route.Path).
			Str("outcome", d.Outcome.String()).
			Str("target", d.Target).
			Msg("navigation")

		switch d.Outcome {
		case Allow:
			n.mu.Lock()
			n.current = route
			n.mu.Unlock()
			res.Route = route
			return res, nil
		case Block:
			if n.notifier != nil && d.Notice != "" {
				n.notifier.Alert(d.Notice)
			}
		}
		path = d.Target
	}

	return res, fmt.Errorf("%w while navigating to %s", ErrRedirectLoop, res.Requested)
}

// Current returns the last route navigation completed at
func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// SessionExpired sends the user to the login page. Subscribe it to the
// session's expiry signal.
func (n *Navigator) SessionExpired() {
	if _, err := n.Navigate(PathLogin); err != nil {
		n.log.Error().Err(err).Msg("Failed to navigate to login after session expiry")
	}
}
