package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrNoConfidentMatch = errors.New("no confident catalog match")
	ErrGradeUnresolved  = errors.New("grade not resolvable against price table")
	ErrMalformedListing = errors.New("listing missing required attribute")
)
