package mapping

import "errors"

// ErrMapping reports a mapping that cannot produce a valid CSV layout: no mappable columns
// or two columns sharing an alias.
var ErrMapping = errors.New("invalid csv mapping")
