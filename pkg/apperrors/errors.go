package apperrors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidSelection     = errors.New("invalid data source selection")
	ErrUnsupportedConnector = errors.New("unsupported connector type")
)
