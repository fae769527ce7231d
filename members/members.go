package members

import (
	"fmt"
	"slices"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Role codes seeded at start-up.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

type Member struct {
	ID                int64     `json:"memberId"`                    // Numeric identifier, assigned by the repo
	LoginID           string    `json:"loginId"`                     // Unique login name
	Name              string    `json:"memberName"`                  // Display name
	DeptID            int64     `json:"deptId,omitempty"`            // Department the member belongs to
	Position          string    `json:"position,omitempty"`          // Job title
	PasswordHash      string    `json:"-"`                           // bcrypt hash - never serialize
	Roles             []string  `json:"roles"`                       // Role codes such as ROLE_ADMIN
	IsInitialPassword bool      `json:"isInitialPassword"`           // Password was issued by an admin and must be changed
	Active            bool      `json:"isActive"`                    // Inactive members cannot log in
	Locked            bool      `json:"isLocked"`                    // Locked after too many failed logins
	LoginFailCount    int       `json:"loginFailCount"`              // Consecutive failed logins
	LastLogin         time.Time `json:"lastLoginAt,omitempty"`       // Last successful login
	PasswordChangedAt time.Time `json:"passwordChangedAt,omitempty"` // Last password change
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// HasRole reports whether the member holds role.
func (m *Member) HasRole(role string) bool {
	return slices.Contains(m.Roles, role)
}

func (m *Member) IsAdmin() bool {
	return m.HasRole(RoleAdmin)
}

// RegisterLoginFailure counts a failed login and locks the member once
// maxFailures is reached. It returns true when this call locked the member.
func (m *Member) RegisterLoginFailure(maxFailures int) bool {
	m.LoginFailCount++
	if maxFailures > 0 && m.LoginFailCount >= maxFailures && !m.Locked {
		m.Locked = true
		return true
	}
	return false
}

// RegisterLogin resets the failure counter after a successful login.
func (m *Member) RegisterLogin(at time.Time) {
	m.LoginFailCount = 0
	m.LastLogin = at
}
