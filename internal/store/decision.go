package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/triage-api/internal/domain"
)

// DecisionLogStore defines the interface for the pipeline audit trail.
type DecisionLogStore interface {
	// Insert appends one decision record.
	Insert(ctx context.Context, record *domain.DecisionRecord) error

	// ListByOperator returns the operator's most recent records, newest
	// first, capped at limit.
	ListByOperator(ctx context.Context, operatorID uuid.UUID, limit int) ([]domain.DecisionRecord, error)

	// WithTx returns a DecisionLogStore bound to the given transaction.
	WithTx(tx *sql.Tx) DecisionLogStore
}
