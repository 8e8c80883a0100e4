package models

import "strings"

// UserRole represents the authorization role of a user
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// User represents the user model in the database. Users are keyed by UUID,
// matching the identifiers embedded in issued tokens.
type User struct {
	Base
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Username  string   `gorm:"uniqueIndex;not null" json:"username"`
	Email     string   `gorm:"uniqueIndex;not null" json:"email"`
	Password  string   `gorm:"not null" json:"-"`
	Avatar    string   `json:"avatar,omitempty"`
	Role      UserRole `gorm:"not null;default:user" json:"role"`
	IsActive  bool     `gorm:"default:true" json:"is_active"`

	Reports []Report `gorm:"foreignKey:UserID" json:"reports,omitempty"`
}

// DisplayName returns "First Last", falling back to the username when the
// name fields are empty. Report rows snapshot this value at submission time.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
