// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in internal/store.
//
// Stores operate over the store.DBTX abstraction so the same code serves
// plain connections and transactions; WithTx returns a copy bound to a
// transaction. Database errors are mapped onto the store sentinel errors
// (unique violations become ErrDuplicate variants, missing rows become
// ErrNotFound variants) so callers never depend on driver error types.
package postgres
