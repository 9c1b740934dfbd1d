// ABOUTME: Wire models for the Stockpilot auth and profile endpoints
// ABOUTME: Defines login/refresh contracts and the cached user profile shape

package models

// LoginRequest represents credentials for authentication
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse represents the access token issued by login and refresh.
// The refresh token itself never appears here; it lives in an httpOnly
// cookie managed by the server.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// User identifies the authenticated account
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Workspace is the tenant the session is scoped to
type Workspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
	Plan string `json:"plan,omitempty"`
}

// Membership links a user to a workspace with a role
type Membership struct {
	WorkspaceID int64  `json:"workspace_id"`
	Role        string `json:"role"`
	IsPrimary   bool   `json:"is_primary"`
}

// Onboarding reports workspace setup progress
type Onboarding struct {
	Done                bool `json:"done"`
	WorkspaceNameSet    bool `json:"workspace_name_set"`
	HasDefaultWarehouse bool `json:"has_default_warehouse"`
}

// Me is the profile returned by GET /api/auth/me.
// Cached in memory after login or a successful silent refresh.
type Me struct {
	User             User         `json:"user"`
	Role             string       `json:"role"`
	CurrentWorkspace Workspace    `json:"current_workspace"`
	Memberships      []Membership `json:"memberships"`
	Onboarding       *Onboarding  `json:"onboarding,omitempty"`
}

// ErrorResponse represents an API error payload
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}
