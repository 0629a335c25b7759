// Package config handles configuration loading, parsing, and validation
// from environment variables and optional config files. It provides
// type-safe access to the settings needed by the server, the mail and LLM
// integrations, and the background pipeline, keeping configuration details
// separate from business logic.
package config
