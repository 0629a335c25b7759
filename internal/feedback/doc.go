// Package feedback implements the single-slot rendezvous between a
// background pipeline worker and the human operator supervising it. A
// worker asks one yes/no question at a time and blocks until the operator
// answers over a live connection or the timeout elapses; timeout resolves
// to the affirmative default so an unattended run always completes. The
// rendezvous is deliberately not a queue: only one question is ever
// outstanding per user, and a queue would let a stale answer be consumed
// by a later, unrelated question.
package feedback
