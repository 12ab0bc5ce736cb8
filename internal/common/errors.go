// Package common defines shared constants and sentinel errors used across
// the archives server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorInvalidInput = errors.New("invalid input")

	// Credential errors. ErrorUnauthorized never says which check failed.
	ErrorUnauthorized = errors.New("invalid or missing credentials")
	ErrorForbidden    = errors.New("admin access required")
	ErrorOriginDenied = errors.New("origin not allowed")

	// Disk errors raised by the storage pipeline.
	ErrorStorageIO = errors.New("storage i/o error")
)
