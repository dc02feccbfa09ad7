package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Patient statuses
const (
	PatientStatusActive   = "active"
	PatientStatusInactive = "inactive"
)

// Genders lists the accepted gender options at registration
var Genders = []string{"male", "female", "other", "prefer_not_to_say"}

// Patient represents a registered portal user
type Patient struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	FirstName             string     `json:"first_name" db:"first_name"`
	LastName              string     `json:"last_name" db:"last_name"`
	Email                 string     `json:"email" db:"email"`
	Phone                 string     `json:"phone" db:"phone"`
	DateOfBirth           time.Time  `json:"date_of_birth" db:"date_of_birth"`
	Gender                string     `json:"gender" db:"gender"`
	Address               string     `json:"address" db:"address"`
	EmergencyContactName  string     `json:"emergency_contact_name" db:"emergency_contact_name"`
	EmergencyContactPhone string     `json:"emergency_contact_phone" db:"emergency_contact_phone"`
	PasswordHash          string     `json:"-" db:"password_hash"`
	IsActive              bool       `json:"is_active" db:"is_active"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt           *time.Time `json:"last_login_at" db:"last_login_at"`
}

// FullName returns the patient's display name
func (p *Patient) FullName() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// RegisterForm represents the registration form fields as submitted
type RegisterForm struct {
	FirstName             string `form:"first_name"`
	LastName              string `form:"last_name"`
	Email                 string `form:"email"`
	Phone                 string `form:"phone"`
	DateOfBirth           string `form:"date_of_birth"`
	Gender                string `form:"gender"`
	Address               string `form:"address"`
	EmergencyContactName  string `form:"emergency_contact_name"`
	EmergencyContactPhone string `form:"emergency_contact_phone"`
	Password              string `form:"password"`
	ConfirmPassword       string `form:"confirm_password"`
}

// LoginForm represents the login form fields
type LoginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// ProfileForm represents the editable profile fields. Email and password
// are changed through their own flows, never here.
type ProfileForm struct {
	FirstName             string `form:"first_name"`
	LastName              string `form:"last_name"`
	Phone                 string `form:"phone"`
	Address               string `form:"address"`
	EmergencyContactName  string `form:"emergency_contact_name"`
	EmergencyContactPhone string `form:"emergency_contact_phone"`
}

// ChangePasswordForm represents the password change form fields
type ChangePasswordForm struct {
	CurrentPassword string `form:"current_password" binding:"required"`
	NewPassword     string `form:"new_password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required"`
}
