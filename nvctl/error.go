package nvctl

import "errors"

// ErrTruncated is returned when a parameter area is shorter than the
// structure its command code promises.
var ErrTruncated = errors.New("parameter area truncated")
