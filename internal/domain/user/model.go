package user

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role constants
const (
	RoleAdmin        = "admin"
	RoleBasicUser    = "basic_user"
	RoleExtendedUser = "extended_user"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleBasicUser, RoleExtendedUser}

// Username and email constraints shared by registration, editing and the
// real-time availability checks.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MaxEmailLength    = 254
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Domain errors
var (
	ErrEmptyUsername      = errors.New("username cannot be empty")
	ErrUsernameFormat     = errors.New("username can only contain letters, numbers, dots, hyphens and underscores")
	ErrUsernameLength     = errors.New("username must be between 3 and 50 characters")
	ErrEmptyEmail         = errors.New("email cannot be empty")
	ErrInvalidEmail       = errors.New("please enter a valid email address")
	ErrInvalidRole        = errors.New("role must be one of: admin, basic_user, extended_user")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrWrongPassword      = errors.New("incorrect username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
)

// User holds state for a library member.
type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	FirstName        string
	LastName         string
	RegistrationDate time.Time
	Role             string
	ProfilePhotoPath string
}

// ValidateUsername checks the username shape rules. Shared with the
// availability-check endpoint so form feedback and persistence agree.
// PRE: none
// POST: returns nil if username is well-formed
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return ErrEmptyUsername
	}
	if !usernamePattern.MatchString(trimmed) {
		return ErrUsernameFormat
	}
	if len(trimmed) < MinUsernameLength || len(trimmed) > MaxUsernameLength {
		return ErrUsernameLength
	}
	return nil
}

// ValidateEmail checks the email shape rules.
// PRE: none
// POST: returns nil if email is well-formed
func ValidateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return ErrEmptyEmail
	}
	if len(trimmed) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !emailPattern.MatchString(trimmed) {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizeEmail lowercases and trims an email for comparison and storage.
// Email uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the User has valid data.
// PRE: User struct is populated
// POST: returns nil if valid, error otherwise
func (u *User) Validate() error {
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if !isValidRole(u.Role) {
		return ErrInvalidRole
	}
	return nil
}

// FullName returns "First Last", falling back to the username when both
// name parts are blank.
// INVARIANT: User fields are not mutated
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 8 characters
// POST: PasswordHash is set to bcrypt hash
func (u *User) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 8 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: User fields are not mutated
func (u *User) CheckPassword(plaintext string) error {
	if u.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
