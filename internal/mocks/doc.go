// Package mocks provides hand-written in-memory test doubles for the store
// and event interfaces. They are shared by the recurrence engine, scheduler,
// and API handler tests.
package mocks
