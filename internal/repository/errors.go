package repository

import "errors"

// ErrVersionConflict is returned when an optimistic version check fails:
// another writer updated the row between our read and our write. Callers
// re-read fresh state and retry.
var ErrVersionConflict = errors.New("concurrent update detected")
