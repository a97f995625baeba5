package repository

import "errors"

// ErrDuplicate is returned when a unique column (email, phone) collides.
var ErrDuplicate = errors.New("duplicate record")
