// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package. Stores accept a
// store.DBTX so the same implementation runs against a pooled connection or
// inside a caller-managed transaction. Schema migrations live in the
// migrations subdirectory and are applied with goose.
package postgres
