// Package store provides abstractions for data persistence.
//
// It defines the interfaces that services depend on (UserStore, TaskStore,
// TagStore), the DBTX abstraction that lets implementations run over either
// a database connection or a transaction, sentinel errors shared by all
// implementations, and the RunInTransaction helper.
//
// Concrete implementations live in internal/platform/postgres.
package store
