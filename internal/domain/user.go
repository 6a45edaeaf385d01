package domain

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User represents a registered business account within the portal.
type User struct {
	ID           string
	BusinessName string
	OwnerName    string
	Industry     string
	ContactInfo  string
	GstOrPan     string
	City         string
	Website      string
	Email        string
	PasswordHash string
	Role         UserRole
	IsVerified   bool
	MembershipID *string
	ValidTill    *time.Time
	Progress     ProgressLedger
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasMembership reports whether a plan has been assigned to the user.
func (u User) HasMembership() bool {
	return u.MembershipID != nil && *u.MembershipID != ""
}

// HashPassword returns the bcrypt hash for a plaintext password.
func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a candidate password against the stored hash.
func (u User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}
