// Package tasks keeps the client's local task list in step with the remote service.
//
// [List] is a cache keyed by task id. Screens call [Syncer.Refresh] whenever they regain focus,
// which replaces the cache wholesale. Between refreshes every successful mutation patches exactly
// one row from the server's response, so the last response for an id wins.
//
// # Bulk Import
//
// [Syncer.Import] creates many tasks with a worker pool throttled by a [rate.Limiter]. Inputs
// are validated up front; per-item failures are collected in the [ImportResult] and never
// retried. Progress is reported on an optional channel without blocking:
//
//	ValidateInput → CreateTasks → Complete
package tasks
