package access

import "errors"

// ErrForbidden is returned by workflows when a verified identity lacks the
// role or flag a mutation requires. The message deliberately does not say
// which check failed.
var ErrForbidden = errors.New("forbidden")
