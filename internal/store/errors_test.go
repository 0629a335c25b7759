package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/triage-api/internal/store"
)

func TestSentinelErrorChains(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, store.ErrOperatorNotFound, store.ErrNotFound,
		"entity-specific not-found must match the generic sentinel")
	assert.ErrorIs(t, store.ErrEmailExists, store.ErrDuplicate)
	assert.NotErrorIs(t, store.ErrEmailExists, store.ErrNotFound)

	assert.True(t, store.IsNotFoundError(store.ErrOperatorNotFound))
	assert.True(t, store.IsNotFoundError(fmt.Errorf("lookup: %w", store.ErrOperatorNotFound)))
	assert.False(t, store.IsNotFoundError(store.ErrEmailExists))

	assert.True(t, store.IsDuplicateError(store.ErrEmailExists))
	assert.False(t, store.IsDuplicateError(store.ErrOperatorNotFound))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := store.NewStoreError("operator", "create", "insert failed", cause)

	assert.Equal(t, "create operation on operator failed: insert failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause, "the cause must survive wrapping")

	var se *store.StoreError
	assert.ErrorAs(t, fmt.Errorf("service: %w", err), &se)
	assert.Equal(t, "operator", se.Entity)

	bare := store.NewStoreError("decision", "list", "bad limit", nil)
	assert.Equal(t, "list operation on decision failed: bad limit", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}
