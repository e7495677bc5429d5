// Package pipeline runs the side-effecting work of every tool.
//
// It provides:
//   - Runner and Pipeline: named steps executed strictly in order, where the
//     first failure stops the pipeline and is returned as an *errors.StepError
//   - Poller: a capped backoff loop that waits for an external system to
//     become ready
//   - FanOut: concurrent per-target work whose failures stay isolated
//
// Nothing in this package exits the process. Completed steps are never
// rolled back; the caller reports them so the operator can clean up.
package pipeline
