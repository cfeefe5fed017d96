package errors

import "errors"

var (
	ErrProviderNotFound = errors.New("provider not found")

	ErrPropertyNotFound = errors.New("property not found")
)
