package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrSheetNotFound = errors.New("worksheet not found")
	ErrSheetExists   = errors.New("worksheet already exists")
	ErrMissingColumn = errors.New("required column missing")
	ErrInvalidLabel  = errors.New("label must be 0 or 1")
)
