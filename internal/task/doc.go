// Package task manages background job queuing and execution. Email
// processing runs take minutes and block on operator feedback, so they
// run on a worker pool instead of the HTTP request goroutine. The queue
// is in-memory only; queued work does not survive a restart.
package task
