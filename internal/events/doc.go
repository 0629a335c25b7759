// Package events decouples the services that request background work from
// the task machinery that performs it.
//
// The automation service emits a ProcessRequestedEvent when an operator
// starts an email processing run; a handler in the task package turns the
// event into a runnable task. Neither side imports the other, which keeps
// the dependency graph acyclic.
//
// The primary components are:
// - ProcessRequestedEvent: a request to start a background processing run
// - EventHandler: components that react to emitted events
// - EventEmitter: components that publish events
package events
