//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/triage-api/internal/domain"
	"github.com/phrazzld/triage-api/internal/platform/postgres"
	"github.com/phrazzld/triage-api/internal/store"
	"github.com/phrazzld/triage-api/internal/testdb"
)

// newTestDecisionRecord builds a valid record for the given operator.
func newTestDecisionRecord(t *testing.T, operatorID uuid.UUID, threadID string) *domain.DecisionRecord {
	t.Helper()

	record, err := domain.NewDecisionRecord(
		operatorID, threadID, "msg-"+threadID, "respond", "respond", true, "correct")
	require.NoError(t, err, "Creating decision record should succeed")
	return record
}

func TestPostgresDecisionStore_Insert(t *testing.T) {
	t.Parallel()

	// Subtests provoking constraint violations run in their own
	// transactions; a failed statement aborts the transaction it ran in.
	t.Run("successful insert", func(t *testing.T) {
		t.Parallel()
		testdb.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()

			decisionStore := postgres.NewPostgresDecisionStore(tx, nil)
			operatorID := insertTestOperator(ctx, t, tx,
				fmt.Sprintf("decisions-%s@example.com", uuid.New().String()[:8]))

			record := newTestDecisionRecord(t, operatorID, "thread-1")
			record.Outcome = "drafted"

			require.NoError(t, decisionStore.Insert(ctx, record), "Insert should succeed")

			listed, err := decisionStore.ListByOperator(ctx, operatorID, 10)
			require.NoError(t, err)
			require.Len(t, listed, 1, "Exactly one record should be stored")

			got := listed[0]
			assert.Equal(t, record.ID, got.ID)
			assert.Equal(t, operatorID, got.OperatorID)
			assert.Equal(t, "thread-1", got.ThreadID)
			assert.Equal(t, "msg-thread-1", got.MessageID)
			assert.Equal(t, "respond", got.Stage)
			assert.True(t, got.Approved)
			assert.Equal(t, "correct", got.Answer)
			assert.Equal(t, "drafted", got.Outcome)
			assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should round-trip")
		})
	})

	t.Run("unknown operator", func(t *testing.T) {
		t.Parallel()
		testdb.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()

			decisionStore := postgres.NewPostgresDecisionStore(tx, nil)
			record := newTestDecisionRecord(t, uuid.New(), "thread-orphan")

			err := decisionStore.Insert(ctx, record)
			assert.ErrorIs(t, err, store.ErrOperatorNotFound,
				"Insert for unknown operator should fail with ErrOperatorNotFound")
		})
	})

	t.Run("invalid record", func(t *testing.T) {
		t.Parallel()
		testdb.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()

			decisionStore := postgres.NewPostgresDecisionStore(tx, nil)
			record := newTestDecisionRecord(t, uuid.New(), "thread-2")
			record.ThreadID = ""

			err := decisionStore.Insert(ctx, record)
			assert.Equal(t, domain.ErrEmptyThreadID, err, "Error should be ErrEmptyThreadID")
		})
	})
}

func TestPostgresDecisionStore_ListByOperator(t *testing.T) {
	t.Parallel()

	testdb.WithTx(t, testDB, func(t *testing.T, tx *sql.Tx) {
		decisionStore := postgres.NewPostgresDecisionStore(tx, nil)

		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()

		operatorID := insertTestOperator(ctx, t, tx,
			fmt.Sprintf("list-%s@example.com", uuid.New().String()[:8]))
		otherID := insertTestOperator(ctx, t, tx,
			fmt.Sprintf("other-%s@example.com", uuid.New().String()[:8]))

		// Three records with distinct creation times, inserted oldest first.
		base := time.Now().UTC().Truncate(time.Millisecond)
		for i, threadID := range []string{"thread-old", "thread-mid", "thread-new"} {
			record := newTestDecisionRecord(t, operatorID, threadID)
			record.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, decisionStore.Insert(ctx, record))
		}

		// A record belonging to a different operator.
		require.NoError(t, decisionStore.Insert(ctx, newTestDecisionRecord(t, otherID, "thread-foreign")))

		t.Run("newest first", func(t *testing.T) {
			listed, err := decisionStore.ListByOperator(ctx, operatorID, 10)
			require.NoError(t, err)
			require.Len(t, listed, 3, "Only this operator's records should be returned")

			assert.Equal(t, "thread-new", listed[0].ThreadID)
			assert.Equal(t, "thread-mid", listed[1].ThreadID)
			assert.Equal(t, "thread-old", listed[2].ThreadID)
		})

		t.Run("limit honored", func(t *testing.T) {
			listed, err := decisionStore.ListByOperator(ctx, operatorID, 2)
			require.NoError(t, err)
			require.Len(t, listed, 2)

			assert.Equal(t, "thread-new", listed[0].ThreadID)
			assert.Equal(t, "thread-mid", listed[1].ThreadID)
		})

		t.Run("no records", func(t *testing.T) {
			emptyID := insertTestOperator(ctx, t, tx,
				fmt.Sprintf("empty-%s@example.com", uuid.New().String()[:8]))

			listed, err := decisionStore.ListByOperator(ctx, emptyID, 10)
			require.NoError(t, err)
			assert.NotNil(t, listed, "Result should be an empty slice, not nil")
			assert.Empty(t, listed)
		})
	})
}
