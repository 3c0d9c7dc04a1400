package walker

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
)

func dirEntry(name string, attrs ...Attributes) Entry {
	e := Entry{Name: name, Attributes: AttrDirectory}
	for _, a := range attrs {
		e.Attributes |= a
	}
	return e
}

func fileEntry(name string, size uint64) Entry {
	return Entry{Name: name, Attributes: AttrArchive, SizeHigh: uint32(size >> 32), SizeLow: uint32(size)}
}

func deniedEntry(name string) Entry {
	return Entry{Name: name, Err: fs.ErrPermission}
}

// fakeEnum is a scripted directory tree. Listings get "." and ".." prepended
// and every native-style call is counted.
type fakeEnum struct {
	dirs   map[string][]Entry
	denied map[string]bool

	opened  []string
	opens   int
	nexts   int
	checks  int
	closes  int
	openNow int
}

func newFakeEnum() *fakeEnum {
	return &fakeEnum{dirs: map[string][]Entry{}, denied: map[string]bool{}}
}

func (f *fakeEnum) dir(path string, entries ...Entry) *fakeEnum {
	f.dirs[path] = entries
	return f
}

func (f *fakeEnum) deny(path string) *fakeEnum {
	f.denied[path] = true
	return f
}

func (f *fakeEnum) calls() int { return f.opens + f.nexts + f.checks }

func (f *fakeEnum) Open(dir string) (EntryStream, error) {
	f.opens++
	f.opened = append(f.opened, dir)
	if f.denied[dir] {
		f.openNow++
		return &fakeStream{enum: f, entries: []Entry{{Err: fs.ErrPermission}}}, nil
	}
	entries, ok := f.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}
	all := append([]Entry{dirEntry("."), dirEntry("..")}, entries...)
	f.openNow++
	return &fakeStream{enum: f, entries: all}, nil
}

func (f *fakeEnum) IsAccessDenied(path string) bool {
	f.checks++
	return f.denied[path]
}

type fakeStream struct {
	enum    *fakeEnum
	entries []Entry
	pos     int
	closed  bool
}

func (s *fakeStream) Next() (Entry, bool) {
	s.enum.nexts++
	if s.pos >= len(s.entries) {
		return Entry{}, false
	}
	e := s.entries[s.pos]
	s.pos++
	return e, true
}

func (s *fakeStream) Close() error {
	if s.closed {
		return fmt.Errorf("stream closed twice")
	}
	s.closed = true
	s.enum.closes++
	s.enum.openNow--
	return nil
}

type fakeOwners struct {
	owners map[string]string
	errs   map[string]error
	calls  int
}

func (f *fakeOwners) ResolveOwner(path string) (string, error) {
	f.calls++
	if err, ok := f.errs[path]; ok {
		return "", err
	}
	return f.owners[path], nil
}

type failingSizer struct {
	fail map[string]error
	next SizeAggregator
}

func (s failingSizer) Aggregate(ctx context.Context, path string, includeSubtree, includeHidden bool) (FolderSizeInfo, error) {
	if err, ok := s.fail[path]; ok {
		return FolderSizeInfo{}, err
	}
	return s.next.Aggregate(ctx, path, includeSubtree, includeHidden)
}

func p(elem ...string) string {
	return filepath.Join(append([]string{string(filepath.Separator) + "root"}, elem...)...)
}

func reportPaths(reports []FolderReport) []string {
	paths := make([]string, 0, len(reports))
	for _, r := range reports {
		paths = append(paths, r.ReportPath())
	}
	return paths
}
