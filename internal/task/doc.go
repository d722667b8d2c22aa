// Package task runs flashcard generation in the background. A TaskRunner
// accepts tasks into a bounded queue, a WorkerPool executes them, and a
// JobStore records each job's status and outcome so clients can poll for it.
package task
