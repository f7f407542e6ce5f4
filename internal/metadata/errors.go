package metadata

import "errors"

// ErrSchemaMismatch marks inference failures that can only be fixed by changing the schema
// or the requested endpoints: missing relationships, ambiguous primary keys, unresolved
// foreign key targets.
var ErrSchemaMismatch = errors.New("schema mismatch")
