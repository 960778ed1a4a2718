package errors

import (
	"fmt"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")

	ErrValidation       = fmt.Errorf("invalid input")
	ErrConflict         = fmt.Errorf("participant already exists")
	ErrNotFound         = fmt.Errorf("not found")
	ErrAuth             = fmt.Errorf("not allowed")
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
)
