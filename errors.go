package gitsearch

import (
	"errors"

	"github.com/helixml/gitsearch/application/service"
	"github.com/helixml/gitsearch/domain/catalog"
)

// Errors returned by the client.
var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = service.ErrClientClosed

	// ErrResetFailed indicates the catalog could not be reset at startup.
	ErrResetFailed = errors.New("gitsearch: initial catalog reset failed")

	// ErrValidation indicates missing or malformed input.
	ErrValidation = catalog.ErrValidation

	// ErrNotImplemented indicates an operation the catalog does not provide.
	ErrNotImplemented = catalog.ErrNotImplemented
)
