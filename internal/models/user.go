package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent     UserRole = "student"
	RoleAdmin       UserRole = "admin"
	RoleHR          UserRole = "hr"
	RoleInterviewer UserRole = "interviewer"
)

// ValidRole reports whether r is one of the portal roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleHR, RoleInterviewer:
		return true
	}
	return false
}

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Username     string   `json:"username" gorm:"uniqueIndex;not null;size:100" validate:"required,min=3,max=100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Role         UserRole `json:"role" gorm:"not null;default:student;index;size:20" validate:"omitempty,user_role"`

	// Profile info
	Phone          string  `json:"phone" gorm:"size:20"`
	PhoneVerified  bool    `json:"phone_verified" gorm:"default:false"`
	FullName       *string `json:"full_name" gorm:"size:100"`
	Specialization *string `json:"specialization" gorm:"size:100"` // interviewers only

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
