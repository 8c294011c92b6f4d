package volume

import "errors"

var (
	ErrBadGeometry = errors.New("invalid volume geometry")
	ErrBadLogging  = errors.New("invalid log configuration")
	ErrBadStore    = errors.New("invalid block store")
)
