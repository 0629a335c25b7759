package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/triage-api/internal/domain"
	"github.com/phrazzld/triage-api/internal/platform/logger"
	"github.com/phrazzld/triage-api/internal/store"
)

// PostgresOperatorStore implements the store.OperatorStore interface
// using a PostgreSQL database as the storage backend.
type PostgresOperatorStore struct {
	db         store.DBTX
	bcryptCost int
}

// NewPostgresOperatorStore creates a new PostgreSQL implementation of the
// OperatorStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller, and the bcrypt cost
// to use when hashing passwords. Costs outside the valid bcrypt range fall
// back to bcrypt.DefaultCost; tests pass bcrypt.MinCost to keep hashing fast.
func NewPostgresOperatorStore(db store.DBTX, bcryptCost int) *PostgresOperatorStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &PostgresOperatorStore{
		db:         db,
		bcryptCost: bcryptCost,
	}
}

// Ensure PostgresOperatorStore implements store.OperatorStore interface
var _ store.OperatorStore = (*PostgresOperatorStore)(nil)

// DB returns the underlying database connection or transaction.
func (s *PostgresOperatorStore) DB() store.DBTX {
	return s.db
}

// Create implements store.OperatorStore.Create
// It validates the operator, hashes the plaintext password, and saves the
// record. The plaintext password is cleared once the hash exists so it
// never outlives this call.
// Returns store.ErrEmailExists if the email is already taken.
func (s *PostgresOperatorStore) Create(ctx context.Context, operator *domain.Operator) error {
	log := logger.FromContext(ctx)

	if err := operator.Validate(); err != nil {
		log.Warn("operator validation failed during create",
			"error", err,
			"operator_id", operator.ID)
		return err
	}

	// Operators created through registration carry a plaintext password.
	// Pre-hashed operators (seed tooling) are stored as-is.
	if operator.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(operator.Password), s.bcryptCost)
		if err != nil {
			log.Error("failed to hash password",
				"error", err,
				"operator_id", operator.ID)
			return fmt.Errorf("failed to hash password: %w", err)
		}
		operator.HashedPassword = string(hashed)
		operator.Password = ""
	}

	query := `
		INSERT INTO operators (id, email, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		operator.ID,
		operator.Email,
		operator.HashedPassword,
		operator.CreatedAt,
		operator.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate email during operator creation",
				"operator_id", operator.ID)
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}

		log.Error("failed to create operator",
			"error", err,
			"operator_id", operator.ID)
		return err
	}

	log.Info("operator created",
		"operator_id", operator.ID)
	return nil
}

// GetByID implements store.OperatorStore.GetByID
// It retrieves an operator by its unique ID. The returned operator carries
// the stored password hash and an empty plaintext password.
// Returns store.ErrOperatorNotFound if the operator does not exist.
func (s *PostgresOperatorStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM operators
		WHERE id = $1
	`

	var operator domain.Operator
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&operator.ID,
		&operator.Email,
		&operator.HashedPassword,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("operator not found", "operator_id", id)
			return nil, store.ErrOperatorNotFound
		}
		log.Error("failed to get operator by ID",
			"error", err,
			"operator_id", id)
		return nil, err
	}

	return &operator, nil
}

// GetByEmail implements store.OperatorStore.GetByEmail
// It retrieves an operator by email address.
// Returns store.ErrOperatorNotFound if the operator does not exist.
func (s *PostgresOperatorStore) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM operators
		WHERE email = $1
	`

	var operator domain.Operator
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&operator.ID,
		&operator.Email,
		&operator.HashedPassword,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Email addresses stay out of log output.
			log.Debug("operator not found by email")
			return nil, store.ErrOperatorNotFound
		}
		log.Error("failed to get operator by email", "error", err)
		return nil, err
	}

	return &operator, nil
}

// WithTx implements store.OperatorStore.WithTx
// It returns a new store bound to the given transaction, keeping the
// configured bcrypt cost.
func (s *PostgresOperatorStore) WithTx(tx *sql.Tx) store.OperatorStore {
	return &PostgresOperatorStore{
		db:         tx,
		bcryptCost: s.bcryptCost,
	}
}
