package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Username    string     `json:"username" db:"username" example:"jdoe"`
	Email       string     `json:"email" db:"email" example:"jdoe@college.edu"`
	Password    string     `json:"-" db:"password"` // hashed, excluded from JSON
	FullName    string     `json:"fullName" db:"full_name" example:"John Doe"`
	Branch      string     `json:"branch" db:"branch" example:"Computer Science"`
	Year        int        `json:"year" db:"year" example:"3"`
	Role        Role       `json:"role" db:"role" example:"USER"`
	Status      UserStatus `json:"status" db:"status" example:"ACTIVE"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
