package postgres

import (
	"context"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/triage-api/internal/domain"
	"github.com/phrazzld/triage-api/internal/store"
)

func validDecisionRecord(t *testing.T) *domain.DecisionRecord {
	t.Helper()

	record, err := domain.NewDecisionRecord(
		uuid.New(), "thread-1", "msg-1", "respond", "respond", true, "correct")
	require.NoError(t, err)
	return record
}

func TestNewPostgresDecisionStorePanicsOnNilDB(t *testing.T) {
	assert.Panics(t, func() {
		NewPostgresDecisionStore(nil, slog.Default())
	})
}

func TestDecisionStoreInsertWritesAllColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	record := validDecisionRecord(t)
	record.Outcome = "archived"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO decision_log")).
		WithArgs(record.ID, record.OperatorID, record.ThreadID, record.MessageID,
			record.Stage, record.Decision, record.Approved, record.Answer,
			record.Outcome, record.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewPostgresDecisionStore(db, nil)
	require.NoError(t, s.Insert(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionStoreInsertMapsForeignKeyViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO decision_log")).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "decision_log_operator_id_fkey"})

	s := NewPostgresDecisionStore(db, nil)
	err = s.Insert(context.Background(), validDecisionRecord(t))

	assert.ErrorIs(t, err, store.ErrOperatorNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionStoreInsertSkipsDatabaseOnValidationError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	record := validDecisionRecord(t)
	record.Stage = ""

	s := NewPostgresDecisionStore(db, nil)
	err = s.Insert(context.Background(), record)

	assert.Equal(t, domain.ErrEmptyStage, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "no SQL should run when validation fails")
}

func TestDecisionStoreListDefaultsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	operatorID := uuid.New()
	emptyRows := sqlmock.NewRows([]string{
		"id", "operator_id", "thread_id", "message_id", "stage",
		"decision", "approved", "answer", "outcome", "created_at",
	})

	mock.ExpectQuery(regexp.QuoteMeta("FROM decision_log")).
		WithArgs(operatorID, defaultDecisionListLimit).
		WillReturnRows(emptyRows)

	s := NewPostgresDecisionStore(db, nil)
	records, err := s.ListByOperator(context.Background(), operatorID, 0)

	require.NoError(t, err)
	assert.NotNil(t, records, "empty result should be an empty slice, not nil")
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisionStoreListScansRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	operatorID := uuid.New()
	firstID := uuid.New()
	secondID := uuid.New()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "operator_id", "thread_id", "message_id", "stage",
		"decision", "approved", "answer", "outcome", "created_at",
	}).
		AddRow(firstID.String(), operatorID.String(), "thread-b", "msg-b", "categorize",
			"archive", false, "wrong", "", now).
		AddRow(secondID.String(), operatorID.String(), "thread-a", "msg-a", "respond",
			"respond", true, "correct", "drafted", now.Add(-time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta("FROM decision_log")).
		WithArgs(operatorID, 2).
		WillReturnRows(rows)

	s := NewPostgresDecisionStore(db, nil)
	records, err := s.ListByOperator(context.Background(), operatorID, 2)

	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, firstID, records[0].ID)
	assert.Equal(t, "thread-b", records[0].ThreadID)
	assert.Equal(t, "categorize", records[0].Stage)
	assert.False(t, records[0].Approved)
	assert.Equal(t, "wrong", records[0].Answer)
	assert.Empty(t, records[0].Outcome)

	assert.Equal(t, secondID, records[1].ID)
	assert.Equal(t, "drafted", records[1].Outcome)
	assert.True(t, records[1].Approved)
	assert.NoError(t, mock.ExpectationsWereMet())
}
