// ABOUTME: Route guard deciding whether a navigated path may render or must redirect
// ABOUTME: One check per distinct path, driven by session state and flag cookies

package guard

import (
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/stockpilot/stockpilot-go/cookies"
	"github.com/stockpilot/stockpilot-go/session"
)

// Action is the guard's verdict for a navigation.
type Action int

const (
	// ActionAllow renders the requested page.
	ActionAllow Action = iota
	// ActionRedirectLogin sends the user to the login page, carrying the
	// original path in the next query parameter.
	ActionRedirectLogin
	// ActionRedirectHome sends an already-authenticated user away from
	// the login/register pages to the default landing page.
	ActionRedirectHome
)

// Result is a guard decision plus the redirect target when applicable.
type Result struct {
	Action   Action
	Location string
}

// Config holds the guard's route layout.
type Config struct {
	LoginPath   string   // default /login
	HomePath    string   // default /dashboard
	PublicPaths []string // paths reachable without a session; default /login, /register
}

func (c *Config) applyDefaults() {
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
	if c.HomePath == "" {
		c.HomePath = "/dashboard"
	}
	if len(c.PublicPaths) == 0 {
		c.PublicPaths = []string{"/login", "/register"}
	}
}

// Guard runs one check per navigated path: Unchecked -> Checked, reset on
// every path change. It never blocks rendering; before the session manager
// is ready it allows the page shell through and corrects with a redirect
// on a later check, accepting a brief flash over a blocking spinner.
type Guard struct {
	sessions *session.Manager
	cookies  *cookies.Jar
	cfg      Config

	mu       sync.Mutex
	lastPath string
	checked  bool
}

// New creates a guard over the given session manager and cookie jar.
func New(m *session.Manager, jar *cookies.Jar, cfg Config) *Guard {
	cfg.applyDefaults()
	return &Guard{sessions: m, cookies: jar, cfg: cfg}
}

// Check evaluates a navigation to path (with optional raw query).
func (g *Guard) Check(path, rawQuery string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	if path != g.lastPath {
		g.lastPath = path
		g.checked = false
	}

	if g.checked {
		return Result{Action: ActionAllow}
	}

	// Not ready yet: render the shell, leave the path unchecked so the
	// decision happens on a later pass once boot has completed.
	if !g.sessions.Ready() {
		return Result{Action: ActionAllow}
	}

	g.checked = true

	token := g.sessions.AccessToken()
	public := g.isPublic(path)

	// No token and no refresh cookie to recover one from: this session
	// cannot become authenticated, so protected paths go to login.
	if token == "" && !public && !g.cookies.Has(cookies.CSRFRefresh) {
		next := path
		if rawQuery != "" {
			next += "?" + rawQuery
		}
		loc := g.cfg.LoginPath + "?next=" + url.QueryEscape(next)
		slog.Debug("Guard: redirecting to login", "path", path)
		return Result{Action: ActionRedirectLogin, Location: loc}
	}

	// Authenticated users with onboarding complete have no business on
	// the login/register pages.
	if token != "" && public {
		if ob, _ := g.cookies.Get(cookies.Onboarded); ob == "1" {
			slog.Debug("Guard: redirecting to home", "path", path)
			return Result{Action: ActionRedirectHome, Location: g.cfg.HomePath}
		}
	}

	return Result{Action: ActionAllow}
}

func (g *Guard) isPublic(path string) bool {
	for _, p := range g.cfg.PublicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
