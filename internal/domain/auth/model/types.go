package model

// Roles form a small closed set. Route policy maps roles to
// operations in the transport layer; the auth domain only carries
// the value.
const (
	RoleAdmin      = "ADMIN"
	RoleAuthor     = "AUTHOR"
	RoleSubscriber = "SUBSCRIBER"
	RoleUser       = "USER"
)

// Principal is a resolved caller identity. It is read from the
// account store at validation time and never persisted by the auth
// domain itself.
type Principal struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role"`
	Enabled bool   `json:"enabled"`
}

// Logger provides the minimal logging contract required by the auth domain.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}
