//go:build !windows
// +build !windows

package commands

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// capDacReadSearch lets a process read and search every directory.
const capDacReadSearch = 2

// IsElevated reports whether the process can read every folder: it runs as
// root or holds CAP_DAC_READ_SEARCH.
func IsElevated() (bool, error) {
	if os.Geteuid() == 0 {
		return true, nil
	}
	return hasDacReadSearch(afero.NewOsFs())
}

// hasDacReadSearch checks the effective capability set in /proc. Systems
// without /proc have no capabilities to grant.
func hasDacReadSearch(vfs afero.Fs) (bool, error) {
	data, err := afero.ReadFile(vfs, "/proc/self/status")
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		value, ok := strings.CutPrefix(sc.Text(), "CapEff:")
		if !ok {
			continue
		}
		caps, err := strconv.ParseUint(strings.TrimSpace(value), 16, 64)
		if err != nil {
			return false, fmt.Errorf("failed to parse CapEff %q: %w", value, err)
		}
		return caps&(1<<capDacReadSearch) != 0, nil
	}
	return false, sc.Err()
}
