package document

import "errors"

// Document errors
var (
	ErrParseFailed  = errors.New("failed to parse document")
	ErrRenderFailed = errors.New("failed to render document")
	ErrNilRoot      = errors.New("document root is nil")
)
