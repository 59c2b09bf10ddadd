package store

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrAlreadyExists    = errors.New("already exists")
	ErrDuplicateLinkage = errors.New("duplicate linkage")
	ErrLinkedRecords    = errors.New("linked records exist")
)
