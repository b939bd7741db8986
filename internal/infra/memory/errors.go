package memory

import "errors"

var errClosed = errors.New("memory repository is closed")
