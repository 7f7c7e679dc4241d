// Package models contains data structures for the application's domain models.
package models

import "time"

// UserRole defines the authorization role of a user.
type UserRole string

const (
	// UserRoleMember is the default role for registered users.
	UserRoleMember UserRole = "user"
	// UserRoleAdmin grants item verification and claim adjudication rights.
	UserRoleAdmin UserRole = "admin"
)

// User represents a registered account. Users report items and file claims.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items  []Item  `gorm:"foreignKey:ReporterID" json:"items,omitempty"`
	Claims []Claim `gorm:"foreignKey:ClaimantID" json:"claims,omitempty"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
