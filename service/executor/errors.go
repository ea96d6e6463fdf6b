package executor

import "errors"

var (
	ErrBodyMissing = errors.New("function body was nil")
)
