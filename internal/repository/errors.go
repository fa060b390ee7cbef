package repository

import "errors"

// ErrNotFound is wrapped by every Get method when no row matches.
var ErrNotFound = errors.New("not found")
