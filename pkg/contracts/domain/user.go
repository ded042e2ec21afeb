package domain

import "time"

// Role controls access to administrative endpoints.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is an account known to the service. PasswordHash is a bcrypt hash
// and never serialized.
type User struct {
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Preferences is the per-user settings blob persisted under the user's
// data directory.
type Preferences struct {
	Theme           string `json:"theme"`
	DefaultTemplate string `json:"default_template"`
	Notifications   bool   `json:"notifications"`
	AutoSave        bool   `json:"auto_save"`
}

// DefaultPreferences returns the settings applied to users who have never
// saved any.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:           "light",
		DefaultTemplate: "default",
		Notifications:   true,
		AutoSave:        true,
	}
}
