// Package events defines the event envelope published on the todo-events
// topic and the Publisher used to enqueue events onto Redis via asynq.
//
// Every task mutation and scheduler decision is broadcast as an Envelope
// carrying a closed EventType, an ISO-8601 UTC timestamp, the owning user's
// ID, and a type-specific JSON payload. Publishing is fire-and-forget: a
// broker failure is logged and reported to the caller as a boolean, never as
// an error, so API mutations and scheduler runs are never blocked by the
// event pipeline.
//
// The consuming side lives in internal/worker, which dispatches envelopes by
// EventType.
package events
