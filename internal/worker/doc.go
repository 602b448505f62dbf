// Package worker consumes the todo-events topic.
//
// A single asynq handler receives every envelope published on the topic and
// the Router dispatches by event type: notification events are rendered to
// the log, recurring-task-created events are forwarded to the recurrence
// engine, and the remaining types are acknowledged as audit traffic.
// Envelopes that cannot be parsed or routed are dropped with a log line
// rather than retried, since redelivery cannot repair a malformed message.
package worker
