// Package gemini implements the pipeline's decision engine using Google's
// Gemini API. It renders one prompt per pipeline operation, calls the model
// with retry and exponential backoff for transient failures, and normalizes
// the model's JSON decisions into domain values. Draft-writing operations
// return the model's raw text so the pipeline can hand it to the mail
// provider unchanged.
package gemini
