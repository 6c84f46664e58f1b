// Package apperr holds shared sentinel errors mapped to transport
// status codes by the API layer.
package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)
