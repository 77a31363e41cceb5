package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidField      = errors.New("invalid field configuration")
	ErrDuplicateField    = errors.New("a field with this name already exists for one or more of the selected product categories")
	ErrProviderFailure   = errors.New("provider failure")
	ErrSessionNotFound   = errors.New("enhancement session not found")
	ErrInvalidTransition = errors.New("invalid enhancement transition")
	ErrVersionConflict   = errors.New("version conflict")
)
