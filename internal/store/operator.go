package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/triage-api/internal/domain"
)

// OperatorStore defines the interface for operator account persistence.
type OperatorStore interface {
	// Create saves a new operator. It validates the entity and hashes the
	// plaintext password internally.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, operator *domain.Operator) error

	// GetByID retrieves an operator by ID. The returned operator never
	// carries a plaintext password.
	// Returns ErrOperatorNotFound if no such operator exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error)

	// GetByEmail retrieves an operator by email address.
	// Returns ErrOperatorNotFound if no such operator exists.
	GetByEmail(ctx context.Context, email string) (*domain.Operator, error)

	// WithTx returns an OperatorStore bound to the given transaction. The
	// transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) OperatorStore
}
