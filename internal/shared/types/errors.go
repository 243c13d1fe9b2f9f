package types

import "errors"

// Taxonomia de erros do pipeline de exportação. Os adaptadores embrulham a causa
// com fmt.Errorf("%w: ...: %w", ErrX, err); quem chama testa com errors.Is.
var (
	ErrCredential    = errors.New("credential error")
	ErrFetch         = errors.New("fetch error")
	ErrSchema        = errors.New("schema error")
	ErrIO            = errors.New("io error")
	ErrSerialization = errors.New("serialization error")
	ErrUpload        = errors.New("upload error")

	ErrInvalidArgs = errors.New("invalid arguments")
	ErrConfig      = errors.New("config error")
)
