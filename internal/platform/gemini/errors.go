package gemini

import "errors"

// Common errors returned by the decision engine.
var (
	// ErrEmptyInput is returned when an operation is invoked with empty email
	// content or an empty summary.
	ErrEmptyInput = errors.New("engine input cannot be empty")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error calling language model")

	// ErrInvalidConfig is returned when the engine configuration is invalid
	ErrInvalidConfig = errors.New("invalid engine configuration")
)
