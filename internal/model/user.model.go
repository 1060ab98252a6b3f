package model

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

// InitialScore is the reputation a user starts with.
func (r Role) InitialScore() int {
	if r == RoleStudent {
		return 35
	}
	return 0
}

// StudentProfile holds the fields only students carry.
type StudentProfile struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Year        int    `json:"year,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
}

// EmployerProfile holds the fields only employers carry.
type EmployerProfile struct {
	BusinessName    string `json:"business_name,omitempty"`
	BusinessType    string `json:"business_type,omitempty"`
	BusinessAddress string `json:"business_address,omitempty"`
}

type User struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Role            Role             `json:"role"`
	Phone           string           `json:"phone,omitempty"`
	IsPhoneVerified bool             `json:"is_phone_verified"`
	Score           int              `json:"score"`
	Student         *StudentProfile  `json:"student,omitempty"`
	Employer        *EmployerProfile `json:"employer,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (User) TableName() string { return "users" }

// ProfileComplete reports whether the role-required profile fields are
// filled in. Admins have no profile requirements.
func (u *User) ProfileComplete() bool {
	switch u.Role {
	case RoleStudent:
		return u.Student != nil && strings.TrimSpace(u.Student.Institution) != ""
	case RoleEmployer:
		return u.Employer != nil && strings.TrimSpace(u.Employer.BusinessName) != ""
	}
	return true
}

// UserCreateRequest is the input for registering a user.
type UserCreateRequest struct {
	Name     string
	Email    string
	Role     Role
	Phone    string
	Student  *StudentProfile
	Employer *EmployerProfile
}

func (p *UserCreateRequest) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if !strings.Contains(p.Email, "@") {
		return errors.New("valid email is required")
	}
	switch p.Role {
	case RoleStudent, RoleEmployer, RoleAdmin:
	default:
		return errors.New("role must be student, employer or admin")
	}
	return nil
}

func (p *UserCreateRequest) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
}

// Principal is the authenticated identity attached to a request. Issued by
// the auth boundary; this core trusts it verbatim and does its own
// authorization checks on top.
type Principal struct {
	ID   int64
	Role Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
