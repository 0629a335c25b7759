// Package api implements the HTTP and WebSocket surface: operator
// authentication, the automation endpoints that start runs and route
// feedback, and the per-operator WebSocket channel.
package api
