//go:build windows
// +build windows

package walker

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows"
)

const maxPath = 260

// NativeEnumerator lists directories with FindFirstFileW and FindNextFileW.
type NativeEnumerator struct{}

// NewDefaultEnumerator returns the directory enumerator for this platform.
func NewDefaultEnumerator() Enumerator {
	return NativeEnumerator{}
}

// searchPattern builds dir\*, switching to the \\?\ form for long paths.
func searchPattern(dir string) string {
	pattern := strings.TrimRight(dir, `\/`) + `\*`
	if len(pattern) >= maxPath && !strings.HasPrefix(pattern, `\\?\`) {
		if strings.HasPrefix(pattern, `\\`) {
			return `\\?\UNC\` + pattern[2:]
		}
		return `\\?\` + pattern
	}
	return pattern
}

func findFirst(dir string, data *windows.Win32finddata) (windows.Handle, error) {
	p, err := windows.UTF16PtrFromString(searchPattern(dir))
	if err != nil {
		return windows.InvalidHandle, err
	}
	return windows.FindFirstFile(p, data)
}

func (NativeEnumerator) Open(dir string) (EntryStream, error) {
	s := &findStream{first: true}
	h, err := findFirst(dir, &s.data)
	if err != nil {
		switch {
		case errors.Is(err, windows.ERROR_ACCESS_DENIED):
			return deniedStream(err), nil
		case errors.Is(err, windows.ERROR_FILE_NOT_FOUND):
			// Volume roots have no "." or ".." so an empty one matches nothing.
			return &sliceStream{}, nil
		case errors.Is(err, windows.ERROR_PATH_NOT_FOUND),
			errors.Is(err, windows.ERROR_DIRECTORY),
			errors.Is(err, windows.ERROR_INVALID_NAME):
			return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryNotFound, dir, err)
		default:
			return nil, fmt.Errorf("FindFirstFile %s: %w", dir, err)
		}
	}
	s.h = h
	return s, nil
}

func (NativeEnumerator) IsAccessDenied(path string) bool {
	var data windows.Win32finddata
	h, err := findFirst(path, &data)
	if err != nil {
		return errors.Is(err, windows.ERROR_ACCESS_DENIED)
	}
	windows.FindClose(h)
	return false
}

type findStream struct {
	h     windows.Handle
	data  windows.Win32finddata
	first bool
	done  bool
}

func (s *findStream) Next() (Entry, bool) {
	if s.done {
		return Entry{}, false
	}
	if !s.first {
		if err := windows.FindNextFile(s.h, &s.data); err != nil {
			s.done = true
			if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
				return Entry{}, false
			}
			return Entry{Err: err}, true
		}
	}
	s.first = false
	return Entry{
		Name:       windows.UTF16ToString(s.data.FileName[:]),
		Attributes: Attributes(s.data.FileAttributes),
		SizeHigh:   s.data.FileSizeHigh,
		SizeLow:    s.data.FileSizeLow,
	}, true
}

func (s *findStream) Close() error {
	if s.h == windows.InvalidHandle || s.h == 0 {
		return nil
	}
	err := windows.FindClose(s.h)
	s.h = windows.InvalidHandle
	return err
}
