// Package domain defines the core business entities of the application:
// users, tasks, and tags, together with their validation rules.
//
// Entities are plain structs constructed through New* functions that
// validate invariants up front. The package has no dependencies on
// persistence or transport; stores and services operate on these types
// through interfaces defined elsewhere.
package domain
