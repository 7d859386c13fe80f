package models

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP
// statuses; everything else surfaces as a 500.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNoRules          = errors.New("policy has no rules")
	ErrAlreadyCompleted = errors.New("attempt already completed")
)
