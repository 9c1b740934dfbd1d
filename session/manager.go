// ABOUTME: Session manager owning the in-memory access token and its lifecycle
// ABOUTME: Coordinates boot, login, logout, and single-flight silent refresh

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/stockpilot/stockpilot-go/cache"
	"github.com/stockpilot/stockpilot-go/client"
	"github.com/stockpilot/stockpilot-go/cookies"
	"github.com/stockpilot/stockpilot-go/models"
)

// ProfileKey is the shared-cache key for the current user profile.
// Publishing under the request path lets any consumer of the data cache
// observe profile updates without a redundant /api/auth/me call.
const ProfileKey = "/api/auth/me"

const (
	csrfHeaderName    = "X-CSRF-TOKEN"
	hasSessionMaxAge  = 30 * 24 * 60 * 60 // seconds, ~30 days
	defaultRefreshTTL = 10 * time.Second
)

// ErrInvalidCredentials indicates the server rejected a login attempt.
// This is the only auth-layer error meant for direct display to a user.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrRefreshFailed indicates the refresh endpoint rejected the refresh
// cookie or the call timed out. Never shown to a user; the session is
// silently treated as never logged in.
var ErrRefreshFailed = errors.New("token refresh failed")

// Manager owns all shared mutable auth state: the in-memory access token,
// the cached profile, and the single-flight refresh lock. Everything else
// reads through accessors or requests changes via Boot/Login/Logout/Refresh.
//
// The access token exists only in process memory. It is never written to
// disk or any persistent store; only the server-held httpOnly refresh
// cookie survives a process restart.
type Manager struct {
	client  *client.Client
	cookies *cookies.Jar
	cache   *cache.Cache

	refreshTimeout time.Duration

	mu          sync.RWMutex
	accessToken string
	me          *models.Me

	ready atomic.Bool
	boot  sync.Once

	sf singleflight.Group
}

// NewManager creates a session manager and binds its callbacks into the
// HTTP client, wiring the transport's 401 recovery to this manager's
// single-flight refresh. refreshTimeout zero means the 10s default.
func NewManager(c *client.Client, jar *cookies.Jar, dataCache *cache.Cache, refreshTimeout time.Duration) *Manager {
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTTL
	}

	m := &Manager{
		client:         c,
		cookies:        jar,
		cache:          dataCache,
		refreshTimeout: refreshTimeout,
	}

	c.BindAuth(client.Binding{
		GetAccessToken: m.AccessToken,
		SetAccessToken: m.setAccessToken,
		Refresh:        m.Refresh,
	})

	return m
}

// Boot establishes initial session state, once per process. If the
// refresh CSRF cookie is present and no token is held, one silent refresh
// is attempted; its failure is not an error, it just leaves the session
// anonymous. Ready becomes true at the end regardless of outcome, and
// re-invocation is a no-op.
func (m *Manager) Boot(ctx context.Context) {
	m.boot.Do(func() {
		defer m.ready.Store(true)

		if !m.cookies.Has(cookies.CSRFRefresh) {
			// No refresh cookie means no recoverable session; drop any
			// stale advisory flag left over from a previous process.
			m.cookies.Clear(cookies.HasSession, "/")
			slog.Debug("Boot: no refresh cookie, starting anonymous")
			return
		}

		if m.AccessToken() != "" {
			return
		}

		if _, err := m.Refresh(ctx); err != nil {
			// The advisory flag promised a session that turned out not to
			// exist; clear it so edge redirects stop trusting it.
			m.cookies.Clear(cookies.HasSession, "/")
			slog.Debug("Boot: silent refresh failed", "error", err)
		} else {
			slog.Debug("Boot: session restored via silent refresh")
		}
	})
}

// Ready reports whether the boot sequence has completed. It transitions
// false to true exactly once per process and never reverts.
func (m *Manager) Ready() bool {
	return m.ready.Load()
}

// AccessToken returns the current in-memory access token, or empty when
// anonymous. Safe to call from transport callbacks.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken
}

// Me returns the cached user profile, or nil when none is loaded.
func (m *Manager) Me() *models.Me {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.me
}

// Login authenticates with email and password. A server rejection comes
// back as ErrInvalidCredentials with session state untouched; transport
// failures are returned wrapped so callers can show a generic retry
// message. On success the token is stored, the hasSession flag cookie is
// set, and the profile is fetched and published to the shared cache.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	var tok models.TokenResponse
	err := m.client.Post(ctx, "/api/auth/login",
		models.LoginRequest{Email: email, Password: password}, &tok, client.SkipAuth())
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			slog.Debug("Login rejected by server", "status", apiErr.Status)
			return ErrInvalidCredentials
		}
		return fmt.Errorf("login request failed: %w", err)
	}

	m.setAccessToken(tok.AccessToken)
	m.cookies.Set(cookies.HasSession, "1", cookies.Options{
		Path:     "/",
		MaxAge:   hasSessionMaxAge,
		SameSite: http.SameSiteLaxMode,
	})

	if err := m.loadProfile(ctx, ""); err != nil {
		// The session is authenticated either way; the profile will be
		// fetched again on the next refresh if this one failed.
		slog.Warn("Failed to load profile after login", "error", err)
	}

	slog.Debug("Login succeeded", "email", email)
	return nil
}

// Logout invalidates the server-held refresh token (best effort) and
// always clears local state. Even when the network call fails, the client
// must never keep believing it is authenticated.
func (m *Manager) Logout(ctx context.Context) {
	opts := []client.RequestOption{client.SkipAuth()}
	if csrf, ok := m.cookies.Get(cookies.CSRFRefresh); ok {
		opts = append(opts, client.WithHeader(csrfHeaderName, csrf))
	}

	if err := m.client.Post(ctx, "/api/auth/logout", struct{}{}, nil, opts...); err != nil {
		slog.Warn("Logout request failed, clearing local session anyway", "error", err)
	}

	m.cookies.Clear(cookies.HasSession, "/")
	m.clearSession()
	slog.Debug("Logged out")
}

// Refresh obtains a fresh access token using the server-held refresh
// cookie. Concurrent callers share one in-flight network call and observe
// the same outcome; the lock is released when the flight settles, success
// or failure, so a failed refresh cannot wedge future requests.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	v, err, _ := m.sf.Do("refresh", func() (any, error) {
		return m.doRefresh()
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// doRefresh performs the actual refresh call. It runs under its own
// bounded deadline detached from any caller: the result is shared by
// every waiter, so one caller's cancellation must not fail the flight
// for the rest, and the bound keeps a hung call from holding the
// single-flight lock indefinitely.
func (m *Manager) doRefresh() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.refreshTimeout)
	defer cancel()

	opts := []client.RequestOption{client.SkipAuth()}
	if csrf, ok := m.cookies.Get(cookies.CSRFRefresh); ok {
		opts = append(opts, client.WithHeader(csrfHeaderName, csrf))
	}

	var tok models.TokenResponse
	if err := m.client.Post(ctx, "/api/auth/refresh", struct{}{}, &tok, opts...); err != nil {
		// Fail closed: network trouble is treated the same as a definitive
		// rejection. hasSession is left alone; boot and logout own that flag.
		m.clearSession()
		slog.Debug("Refresh failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	m.setAccessToken(tok.AccessToken)

	// After a fresh page-load style refresh there may be no profile yet
	// (login never ran in this process). Load it so consumers have one.
	if m.Me() == nil {
		if err := m.loadProfile(ctx, tok.AccessToken); err != nil {
			slog.Debug("Profile fetch after refresh failed", "error", err)
		}
	}

	return tok.AccessToken, nil
}

// loadProfile fetches /api/auth/me, stores it, and publishes it to the
// shared cache. When token is non-empty the bearer header is attached
// directly with skipAuth: inside an active refresh flight a 401 here must
// not re-enter the single-flight group.
func (m *Manager) loadProfile(ctx context.Context, token string) error {
	opts := []client.RequestOption{}
	if token != "" {
		opts = append(opts,
			client.SkipAuth(),
			client.WithHeader("Authorization", "Bearer "+token))
	}

	var me models.Me
	if err := m.client.Get(ctx, ProfileKey, &me, opts...); err != nil {
		return err
	}

	m.mu.Lock()
	m.me = &me
	m.mu.Unlock()

	if m.cache != nil {
		m.cache.Set(ProfileKey, &me)
	}
	return nil
}

func (m *Manager) setAccessToken(token string) {
	m.mu.Lock()
	m.accessToken = token
	m.mu.Unlock()
}

// clearSession drops the token, profile, and cached profile entry.
func (m *Manager) clearSession() {
	m.mu.Lock()
	m.accessToken = ""
	m.me = nil
	m.mu.Unlock()

	if m.cache != nil {
		m.cache.Delete(ProfileKey)
	}
}
