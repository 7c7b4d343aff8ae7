package flashfinder

import "errors"

// ErrBadFormat reports a raw digit file that does not follow the
// expected layout.
var ErrBadFormat = errors.New("malformed raw digit file")
