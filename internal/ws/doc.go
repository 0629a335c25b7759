// Package ws owns the duplex connection layer: the WebSocket wrapper used
// for client connections, the registry mapping users to their live
// connections, and the wire message types exchanged with clients. Outbound
// routing is strictly per-user; no broadcast primitive exists, so a message
// for one operator can never reach another operator's connection.
package ws
