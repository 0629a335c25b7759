package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/triage-api/internal/domain"
	"github.com/phrazzld/triage-api/internal/platform/logger"
	"github.com/phrazzld/triage-api/internal/store"
)

// defaultDecisionListLimit caps ListByOperator when the caller passes no
// usable limit.
const defaultDecisionListLimit = 50

// PostgresDecisionStore implements the store.DecisionLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDecisionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDecisionStore creates a new PostgreSQL implementation of the
// DecisionLogStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDecisionStore(db store.DBTX, logger *slog.Logger) *PostgresDecisionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDecisionStore{
		db:     db,
		logger: logger.With(slog.String("component", "decision_store")),
	}
}

// Ensure PostgresDecisionStore implements store.DecisionLogStore interface
var _ store.DecisionLogStore = (*PostgresDecisionStore)(nil)

// Insert implements store.DecisionLogStore.Insert
// It appends one decision record to the audit trail, handling domain
// validation. Returns store.ErrOperatorNotFound if the operator the record
// points at does not exist (foreign key violation).
func (s *PostgresDecisionStore) Insert(ctx context.Context, record *domain.DecisionRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("decision record validation failed",
			"error", err,
			"thread_id", record.ThreadID)
		return err
	}

	query := `
		INSERT INTO decision_log (id, operator_id, thread_id, message_id, stage, decision, approved, answer, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.OperatorID,
		record.ThreadID,
		record.MessageID,
		record.Stage,
		record.Decision,
		record.Approved,
		record.Answer,
		record.Outcome,
		record.CreatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("unknown operator on decision insert",
				"operator_id", record.OperatorID,
				"thread_id", record.ThreadID)
			return fmt.Errorf("%w: %s", store.ErrOperatorNotFound, record.OperatorID)
		}

		log.Error("failed to insert decision record",
			"error", err,
			"thread_id", record.ThreadID,
			"stage", record.Stage)
		return err
	}

	log.Debug("decision recorded",
		"thread_id", record.ThreadID,
		"stage", record.Stage,
		"decision", record.Decision,
		"approved", record.Approved)
	return nil
}

// ListByOperator implements store.DecisionLogStore.ListByOperator
// It returns the operator's most recent decision records, newest first.
// A non-positive limit falls back to defaultDecisionListLimit. Returns an
// empty slice when the operator has no records.
func (s *PostgresDecisionStore) ListByOperator(
	ctx context.Context,
	operatorID uuid.UUID,
	limit int,
) ([]domain.DecisionRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = defaultDecisionListLimit
	}

	query := `
		SELECT id, operator_id, thread_id, message_id, stage, decision, approved, answer, outcome, created_at
		FROM decision_log
		WHERE operator_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, operatorID, limit)
	if err != nil {
		log.Error("failed to query decision records",
			"error", err,
			"operator_id", operatorID)
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "error", err)
		}
	}()

	var records []domain.DecisionRecord
	for rows.Next() {
		var record domain.DecisionRecord
		err := rows.Scan(
			&record.ID,
			&record.OperatorID,
			&record.ThreadID,
			&record.MessageID,
			&record.Stage,
			&record.Decision,
			&record.Approved,
			&record.Answer,
			&record.Outcome,
			&record.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan decision row", "error", err)
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning decision rows", "error", err)
		return nil, err
	}

	if records == nil {
		records = []domain.DecisionRecord{}
	}

	log.Debug("listed decision records",
		"operator_id", operatorID,
		"count", len(records))
	return records, nil
}

// WithTx implements store.DecisionLogStore.WithTx
// It returns a new store bound to the given transaction.
func (s *PostgresDecisionStore) WithTx(tx *sql.Tx) store.DecisionLogStore {
	return &PostgresDecisionStore{
		db:     tx,
		logger: s.logger,
	}
}
