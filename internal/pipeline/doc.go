// Package pipeline drives one background processing run: it fetches the
// threads to work on, walks each through the decision stages, pauses at
// operator checkpoints, and applies the resulting drafts and labels.
package pipeline
