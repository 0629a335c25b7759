package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Operator
var (
	ErrEmptyOperatorID     = errors.New("operator ID cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// Operator represents a human operator who reviews pipeline decisions.
// The string form of its ID is the user key used by the connection
// registry, the feedback broker, and the task state store.
type Operator struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext password, used temporarily during registration/updates
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewOperator creates a new Operator with the given email and password.
// It generates a new UUID for the operator ID and sets the creation/update
// timestamps. Returns an error if validation fails.
//
// NOTE: This function only sets up the operator structure with the plaintext
// password. The caller is responsible for hashing the password before storage.
func NewOperator(email, password string) (*Operator, error) {
	op := &Operator{
		ID:        uuid.New(),
		Email:     email,
		Password:  password, // Plaintext password - must be hashed before storage
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := op.Validate(); err != nil {
		return nil, err
	}

	return op, nil
}

// UserID returns the opaque user key the synchronization core uses for
// this operator.
func (o *Operator) UserID() string {
	return o.ID.String()
}

// Validate checks if the Operator has valid data.
// Returns an error if any field fails validation.
func (o *Operator) Validate() error {
	if o.ID == uuid.Nil {
		return ErrEmptyOperatorID
	}

	if o.Email == "" {
		return ErrEmptyEmail
	}

	if !validEmailFormat(o.Email) {
		return ErrInvalidEmail
	}

	if o.Password != "" {
		// When a plaintext password is provided, validate its length
		switch {
		case len(o.Password) < 12:
			return ErrPasswordTooShort
		case len(o.Password) > 72: // bcrypt's practical limit
			return ErrPasswordTooLong
		}
	} else if o.HashedPassword == "" {
		// Existing operators loaded from the database carry only the hash
		return ErrEmptyPassword
	}

	return nil
}

// validEmailFormat performs basic validation of email format: a single @
// with a dotted domain after it. Addresses that pass still get verified by
// the mail provider the first time they are used, so a stricter parser
// buys little here.
func validEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	if strings.Contains(domain, "@") {
		return false
	}

	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
