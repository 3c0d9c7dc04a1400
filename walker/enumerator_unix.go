//go:build !windows
// +build !windows

package walker

import "github.com/spf13/afero"

// NewDefaultEnumerator returns the directory enumerator for this platform.
func NewDefaultEnumerator() Enumerator {
	return NewFsEnumerator(afero.NewOsFs())
}
