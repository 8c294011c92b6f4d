package path_resolver

import "errors"

var ErrNotFound = errors.New("no such directory")
