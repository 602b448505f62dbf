// Package recurrence implements the recurring-task engine.
//
// The engine has two entry points. ProcessDueTasks is invoked by the
// scheduler on a fixed interval: it fires due reminders and rolls over due
// recurring templates, creating the successor task and completing the parent
// in one transaction per template. HandleRecurringTaskCreated is invoked by
// the event worker when a user creates a recurring task: it schedules the
// first instance, suppressing duplicates from redelivered events with a
// similarity check on (user, title, due date ± DuplicateTolerance).
//
// The two paths deliberately use different reference instants when computing
// the next occurrence. The scheduler path advances from the parent's due
// date so instances stay on their cadence even if the scheduler lags; the
// event path advances from the current time because a freshly created
// recurring task has its first instance anchored to creation.
package recurrence
