// Package store defines interfaces for the persistent side of the system:
// operator accounts and the decision audit trail. The interfaces keep the
// application logic independent of the database; the Postgres
// implementations live under platform/postgres.
package store
