package feedback

import "errors"

// ErrAlreadyWaiting reports a second feedback request for a user whose
// previous request has not yet resolved. The pipeline issues checkpoints
// strictly one at a time per user, so reaching this error means a caller
// bug; it is surfaced rather than silently replacing the pending request.
var ErrAlreadyWaiting = errors.New("feedback request already pending for this user")
