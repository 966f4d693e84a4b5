package version

import (
	"errors"
	"fmt"
)

// ErrNoVersionsAvailable is returned when "latest" is requested against an
// empty catalog.
var ErrNoVersionsAvailable = errors.New("no CUDA versions available")

// ErrMalformedVersion indicates input that is not a Major.Minor or
// Major.Minor.Patch numeric version.
type ErrMalformedVersion struct {
	Input string
}

func (e *ErrMalformedVersion) Error() string {
	return fmt.Sprintf("malformed version %q: expected Major.Minor or Major.Minor.Patch", e.Input)
}
