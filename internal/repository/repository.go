package repository

// Package repository contains data access layer abstractions for the file
// and attachment tables. Implementations live in subpackages (postgres) and
// contain persistence logic only.

import "errors"

// ErrDuplicate reports a unique-constraint violation. Implementations map
// their driver-specific error onto it so services can translate without
// importing driver packages.
var ErrDuplicate = errors.New("repository: unique constraint violation")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
