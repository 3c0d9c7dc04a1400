// Copyright 2025 OpenPubkey
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Enumerator lists directories one entry at a time.
type Enumerator interface {
	// Open starts listing dir. A missing directory fails with an error
	// wrapping ErrDirectoryNotFound. A directory that cannot be read yields
	// a stream whose single entry reports access denied.
	Open(dir string) (EntryStream, error)
	// IsAccessDenied reports whether the directory at path refuses listing.
	IsAccessDenied(path string) bool
}

// EntryStream is an open enumeration. Close must be called exactly once.
type EntryStream interface {
	Next() (Entry, bool)
	Close() error
}

// withStream opens dir and guarantees the stream is closed when fn returns.
func withStream(enum Enumerator, dir string, fn func(EntryStream) error) (err error) {
	s, err := enum.Open(dir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dir, cerr)
		}
	}()
	return fn(s)
}

type sliceStream struct {
	entries []Entry
	pos     int
}

func (s *sliceStream) Next() (Entry, bool) {
	if s.pos >= len(s.entries) {
		return Entry{}, false
	}
	e := s.entries[s.pos]
	s.pos++
	return e, true
}

func (s *sliceStream) Close() error { return nil }

func deniedStream(err error) EntryStream {
	return &sliceStream{entries: []Entry{{Err: err}}}
}

// FsEnumerator lists directories through an afero.Fs. Like FindFirstFile it
// reports "." and ".." first. Names starting with a dot carry the hidden
// attribute.
type FsEnumerator struct {
	Fs afero.Fs
}

func NewFsEnumerator(fs afero.Fs) *FsEnumerator {
	return &FsEnumerator{Fs: fs}
}

func (e *FsEnumerator) fs() afero.Fs {
	if e.Fs == nil {
		e.Fs = afero.NewOsFs()
	}
	return e.Fs
}

func (e *FsEnumerator) Open(dir string) (EntryStream, error) {
	infos, err := e.readDir(dir)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrPermission):
		return deniedStream(err), nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	case errors.Is(err, ErrDirectoryNotFound):
		return nil, err
	default:
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	entries := make([]Entry, 0, len(infos)+2)
	entries = append(entries,
		Entry{Name: ".", Attributes: AttrDirectory},
		Entry{Name: "..", Attributes: AttrDirectory},
	)
	for _, info := range infos {
		entries = append(entries, entryFromInfo(info))
	}
	return &sliceStream{entries: entries}, nil
}

func entryFromInfo(info fs.FileInfo) Entry {
	ent := Entry{Name: info.Name()}
	mode := info.Mode()
	if mode.IsDir() {
		ent.Attributes |= AttrDirectory
	} else {
		ent.SizeHigh, ent.SizeLow = splitSize(info.Size())
		if mode&fs.ModeType == 0 {
			ent.Attributes |= AttrArchive
		}
	}
	if mode&fs.ModeSymlink != 0 {
		ent.Attributes |= AttrReparsePoint
	}
	if mode.Perm()&0o222 == 0 {
		ent.Attributes |= AttrReadOnly
	}
	if strings.HasPrefix(ent.Name, ".") {
		ent.Attributes |= AttrHidden
	}
	return ent
}

// IsAccessDenied performs the same listing as Open, so a folder whose
// children cannot be stat'ed is denied here too.
func (e *FsEnumerator) IsAccessDenied(path string) bool {
	_, err := e.readDir(path)
	return errors.Is(err, fs.ErrPermission)
}

// readDir stats and lists dir, returning the filesystem errors unwrapped.
func (e *FsEnumerator) readDir(dir string) ([]fs.FileInfo, error) {
	fi, err := e.fs().Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, dir)
	}
	f, err := e.fs().Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdir(-1)
}

// childPath joins a directory and an entry name. The current-directory entry
// and entries without a name resolve to the directory itself.
func childPath(dir, name string) string {
	if name == "" || name == "." {
		return dir
	}
	return filepath.Join(dir, name)
}
