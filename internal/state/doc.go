// Package state tracks per-user background task state for the lifetime of
// the process. Records are created lazily on first access and never
// deleted; the store also enforces the one-worker-per-user rule through an
// atomic claim on the running flag, and keeps the process-wide
// last-connected hint used when session identity is ambiguous.
package state
