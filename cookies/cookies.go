// ABOUTME: Flag-cookie accessor scoped to the API origin
// ABOUTME: Reads and writes small non-sensitive client cookies through a shared jar

package cookies

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
)

// Well-known flag cookie names. None of these are security boundaries;
// the real boundary is the httpOnly refresh-token cookie held by the server.
const (
	// HasSession is an advisory flag set after a successful login so
	// edge redirects can happen before any session state is loaded.
	HasSession = "hasSession"
	// Onboarded is set once the workspace setup flow completes.
	Onboarded = "ob"
	// CSRFRefresh is the server-set double-submit token paired with the
	// httpOnly refresh cookie. Read-only from the client's point of view.
	CSRFRefresh = "csrf_refresh_token"
)

// Options controls attributes for written cookies.
// Cookies written here are never httpOnly; client code could not set
// that attribute anyway, and the refresh token never goes through this path.
type Options struct {
	Path     string
	MaxAge   int // seconds; negative clears the cookie
	SameSite http.SameSite
}

// Jar wraps a cookie jar scoped to a single API origin. The same jar is
// shared with the HTTP client so server-set cookies (the refresh token and
// its CSRF pair) ride along on every request automatically.
//
// A nil *Jar behaves like an environment without cookie storage: Get
// reports absent and writes are no-ops.
type Jar struct {
	jar  *cookiejar.Jar
	base *url.URL
}

// NewJar creates a cookie jar for the given API base URL.
func NewJar(baseURL string) (*Jar, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Jar{jar: jar, base: u}, nil
}

// HTTPJar exposes the underlying jar for use by an http.Client.
func (j *Jar) HTTPJar() http.CookieJar {
	if j == nil {
		return nil
	}
	return j.jar
}

// Get returns the first cookie matching name, URL-decoded.
// Absence is a normal state, not an error.
func (j *Jar) Get(name string) (string, bool) {
	if j == nil {
		return "", false
	}

	for _, c := range j.jar.Cookies(j.base) {
		if c.Name == name {
			if decoded, err := url.QueryUnescape(c.Value); err == nil {
				return decoded, true
			}
			return c.Value, true
		}
	}
	return "", false
}

// Has reports whether a cookie with the given name exists.
func (j *Jar) Has(name string) bool {
	_, ok := j.Get(name)
	return ok
}

// Set writes a cookie with the given attributes.
func (j *Jar) Set(name, value string, opts Options) {
	if j == nil {
		return
	}

	path := opts.Path
	if path == "" {
		path = "/"
	}

	j.jar.SetCookies(j.base, []*http.Cookie{{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   opts.MaxAge,
		SameSite: opts.SameSite,
	}})
}

// Clear removes a cookie by overwriting it with an already-expired value.
func (j *Jar) Clear(name, path string) {
	if j == nil {
		return
	}
	if path == "" {
		path = "/"
	}

	j.jar.SetCookies(j.base, []*http.Cookie{{
		Name:   name,
		Value:  "",
		Path:   path,
		MaxAge: -1,
	}})
}
