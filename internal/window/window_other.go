//go:build !windows && !linux && !darwin

package window

import (
	"fmt"
	"runtime"
)

func New(title string, width, height int) (Platform, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, runtime.GOOS)
}
