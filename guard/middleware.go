// ABOUTME: Edge redirect middleware keyed on the advisory hasSession cookie
// ABOUTME: Lets a frontend server bounce anonymous requests before any session state loads

package guard

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/stockpilot/stockpilot-go/cookies"
)

// Middleware returns an HTTP middleware that performs cheap pre-render
// redirects based only on the hasSession request cookie. The flag is
// advisory, not a trust boundary: a forged cookie just means the page
// loads and the real auth flow 401s shortly after.
//
// Requests to a protected prefix without hasSession are redirected to
// loginPath with the original path preserved in next; requests to
// loginPath with hasSession go to homePath.
func Middleware(protectedPrefixes []string, loginPath, homePath string) func(http.HandlerFunc) http.HandlerFunc {
	if loginPath == "" {
		loginPath = "/login"
	}
	if homePath == "" {
		homePath = "/dashboard"
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			hasSession := false
			if c, err := r.Cookie(cookies.HasSession); err == nil && c.Value == "1" {
				hasSession = true
			}

			if !hasSession && isProtected(r.URL.Path, protectedPrefixes) {
				target := r.URL.Path
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				loc := loginPath + "?next=" + url.QueryEscape(target)
				slog.Debug("Edge guard: anonymous request to protected path", "path", r.URL.Path)
				http.Redirect(w, r, loc, http.StatusTemporaryRedirect)
				return
			}

			if hasSession && r.URL.Path == loginPath {
				http.Redirect(w, r, homePath, http.StatusTemporaryRedirect)
				return
			}

			next(w, r)
		}
	}
}

func isProtected(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
