//go:build !windows
// +build !windows

package security

// IdentityShortener returns paths unchanged. POSIX paths have no short form.
type IdentityShortener struct{}

// DefaultShortener returns the path shortener for this platform.
func DefaultShortener() PathShortener { return IdentityShortener{} }

func (IdentityShortener) ShortPath(path string) (string, error) { return path, nil }
