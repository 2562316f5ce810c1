package interfaces

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrConditionFailed = errors.New("conditional update did not match")
	ErrDuplicate       = errors.New("duplicate record")
)
