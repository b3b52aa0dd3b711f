package auth

import (
	"context"
	"time"

	"github.com/buytown/admin-console/internal/backend"
)

// ServiceTokenTTL is how long a minted service token is reused.
const ServiceTokenTTL = 2 * time.Hour

// UnknownUserID identifies a session whose token payload could not be decoded.
const UnknownUserID = "unknown"

type Status int

const (
	StatusInitializing Status = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Claims is display-only metadata read from the session token. It is never
// used to make authorization decisions. Both fields are strings whatever JSON
// type the token carried: a numeric id 42 becomes "42".
type Claims struct {
	ID     string `json:"id"`
	RoleID string `json:"role_id,omitempty"`
}

// ServiceToken authorizes the console itself, independent of any administrator.
type ServiceToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the token can still be used at now.
func (t ServiceToken) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// State is a snapshot of the session. While restoring a session it can briefly
// be authenticated with a nil User.
type State struct {
	Status          Status        `json:"-"`
	IsAuthenticated bool          `json:"is_authenticated"`
	User            *Claims       `json:"user"`
	Loading         bool          `json:"loading"`
	ServiceToken    *ServiceToken `json:"-"`
}

func initialState() State {
	return State{Status: StatusInitializing, Loading: true}
}

func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.ServiceToken != nil {
		t := *s.ServiceToken
		out.ServiceToken = &t
	}
	return out
}

// API is the subset of the backend the manager needs.
type API interface {
	GenerateToken(ctx context.Context, clientID, clientSecret string) (string, error)
	AdminLogin(ctx context.Context, serviceToken, identity, password string) (*backend.LoginResponse, error)
	Logout(ctx context.Context, userToken string) error
	ForgotPassword(ctx context.Context, serviceToken, email string) error
	ResetPassword(ctx context.Context, serviceToken, token, password string) error
}

// LoginResult is what login forms render.
type LoginResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ResultOf converts the outcome of Login into a LoginResult.
func ResultOf(err error) LoginResult {
	if err == nil {
		return LoginResult{Success: true}
	}
	return LoginResult{Success: false, Error: Message(err)}
}
