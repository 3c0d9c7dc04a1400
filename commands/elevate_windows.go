//go:build windows
// +build windows

package commands

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// IsElevated reports whether the process token is elevated. Unelevated
// administrators are filtered out of most folder DACLs.
func IsElevated() (bool, error) {
	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token); err != nil {
		return false, fmt.Errorf("failed to open process token: %w", err)
	}
	defer token.Close()
	return token.IsElevated(), nil
}
