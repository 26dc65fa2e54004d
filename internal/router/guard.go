package router

// MsgAdminOnly is shown when a non-admin tries to open an admin route
const MsgAdminOnly = "Access denied: admins only."

// Outcome of a navigation check
type Outcome int

const (
	Allow Outcome = iota
	// Redirect sends the user to Decision.Target instead.
	Redirect
	// Block refuses the route, shows Decision.Notice and goes to Decision.Target.
	Block
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for one navigation
type Decision struct {
	Outcome Outcome
	Target  string
	Notice  string
}

// Guard decides whether the route may be entered. Checks run in priority
// order: authentication, admin rights, then bouncing signed-in users off the
// login and register pages.
func Guard(route Route, authenticated, admin bool) Decision {
	switch {
	case route.Meta.RequiresAuth && !authenticated:
		return Decision{Outcome: Redirect, Target: PathLogin}
	case route.Meta.RequiresAdmin && !admin:
		return Decision{Outcome: Block, Target: PathHome, Notice: MsgAdminOnly}
	case (route.Path == PathLogin || route.Path == PathRegister) && authenticated:
		return Decision{Outcome: Redirect, Target: PathHome}
	default:
		return Decision{Outcome: Allow}
	}
}
