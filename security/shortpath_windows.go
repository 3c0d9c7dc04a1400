//go:build windows
// +build windows

package security

import (
	"strings"

	"golang.org/x/sys/windows"
)

const maxPath = 260

// NativeShortener converts paths to their 8.3 form with GetShortPathNameW.
type NativeShortener struct{}

// DefaultShortener returns the path shortener for this platform.
func DefaultShortener() PathShortener { return NativeShortener{} }

func (NativeShortener) ShortPath(path string) (string, error) {
	long := path
	if len(long) >= maxPath && !strings.HasPrefix(long, `\\?\`) {
		if strings.HasPrefix(long, `\\`) {
			long = `\\?\UNC\` + long[2:]
		} else {
			long = `\\?\` + long
		}
	}
	pLong, err := windows.UTF16PtrFromString(long)
	if err != nil {
		return "", err
	}
	// The sizing call returns the required size including the terminator.
	n, err := windows.GetShortPathName(pLong, nil, 0)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return path, nil
	}
	buf := make([]uint16, n)
	n, err = windows.GetShortPathName(pLong, &buf[0], uint32(len(buf)))
	if err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf[:n]), nil
}
