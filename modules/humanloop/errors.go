package humanloop

import "errors"

// ErrNotPendingReview is returned by Authorize when the application isn't
// currently parked in pending_human_review.
var ErrNotPendingReview = errors.New("application_not_pending_review")
