// Package service provides application-level services for managing users,
// tasks, and tags.
//
// Services own the transaction boundaries: multi-step mutations run inside
// store.RunInTransaction with transaction-aware store instances. They also
// own event publication: every task mutation publishes its envelope after
// the database commit, fire-and-forget, so the write path never blocks on
// the broker.
package service
