//go:build !windows
// +build !windows

package commands

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"sync"
	"testing"

	"github.com/openpubkey/aclaudit/security"
	"github.com/openpubkey/aclaudit/walker"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

var (
	aliceSID  = security.MustParseSID("S-1-5-21-100-200-300-1001")
	bobSID    = security.MustParseSID("S-1-5-21-100-200-300-1002")
	orphanSID = security.MustParseSID("S-1-5-21-100-200-300-9999")
)

// deniedEnum marks chosen folders as unreadable on top of a real enumerator.
type deniedEnum struct {
	walker.Enumerator
	denied map[string]bool
}

func (e deniedEnum) IsAccessDenied(path string) bool {
	return e.denied[path] || e.Enumerator.IsAccessDenied(path)
}

type fakeSource struct {
	mu          sync.Mutex
	descriptors map[string][]byte
	requested   []string
}

func (s *fakeSource) SecurityDescriptor(path string, info security.SecurityInformation) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requested = append(s.requested, path)
	d, ok := s.descriptors[path]
	if !ok {
		return nil, fmt.Errorf("no descriptor for %s: %w", path, fs.ErrNotExist)
	}
	return d, nil
}

type fakeAccount struct {
	name   string
	domain string
	use    security.SidNameUse
}

// fakeLookup answers with the size-then-fill protocol of LookupAccountSid.
type fakeLookup struct {
	mu       sync.Mutex
	accounts map[string]fakeAccount
	calls    int
}

func (l *fakeLookup) LookupAccountSid(sid security.SID, name, domain []uint16) (uint32, uint32, security.SidNameUse, error) {
	l.mu.Lock()
	l.calls++
	acct, ok := l.accounts[sid.String()]
	l.mu.Unlock()
	if !ok {
		return 0, 0, 0, security.ErrNotMapped
	}
	n := []rune(acct.name)
	d := []rune(acct.domain)
	if len(name) < len(n)+1 || len(domain) < len(d)+1 {
		return uint32(len(n) + 1), uint32(len(d) + 1), 0, security.ErrInsufficientBuffer
	}
	for i, r := range n {
		name[i] = uint16(r)
	}
	name[len(n)] = 0
	for i, r := range d {
		domain[i] = uint16(r)
	}
	domain[len(d)] = 0
	return uint32(len(n)), uint32(len(d)), acct.use, nil
}

func (l *fakeLookup) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type identityShortener struct{}

func (identityShortener) ShortPath(path string) (string, error) { return path, nil }

func descriptor(owner security.SID, aces ...security.AceSpec) []byte {
	return security.DescriptorSpec{Owner: owner, DACL: aces}.Bytes()
}

func allow(sid security.SID, mask security.Rights) security.AceSpec {
	return security.AceSpec{Type: security.AceTypeAccessAllowed, Mask: uint32(mask), SID: sid}
}

func deny(sid security.SID, mask security.Rights) security.AceSpec {
	return security.AceSpec{Type: security.AceTypeAccessDenied, Mask: uint32(mask), SID: sid}
}

// fixture is an in-memory tree:
//
//	/data/projects/src/main.go (10 bytes)
//	/data/projects/README (20 bytes)
//	/data/private          denied
//	/data/.cache/blob      (30 bytes)
type fixture struct {
	fs     afero.Fs
	source *fakeSource
	lookup *fakeLookup
	deps   Deps

	elevated bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mfs := afero.NewMemMapFs()
	require.NoError(t, mfs.MkdirAll("/data/projects/src", 0o755))
	require.NoError(t, mfs.MkdirAll("/data/private", 0o700))
	require.NoError(t, mfs.MkdirAll("/data/.cache", 0o755))
	require.NoError(t, afero.WriteFile(mfs, "/data/projects/src/main.go", bytes.Repeat([]byte("x"), 10), 0o644))
	require.NoError(t, afero.WriteFile(mfs, "/data/projects/README", bytes.Repeat([]byte("x"), 20), 0o644))
	require.NoError(t, afero.WriteFile(mfs, "/data/.cache/blob", bytes.Repeat([]byte("x"), 30), 0o644))

	source := &fakeSource{descriptors: map[string][]byte{
		"/data":              descriptor(aliceSID, allow(aliceSID, security.FullControl)),
		"/data/projects":     descriptor(aliceSID, allow(aliceSID, security.FullControl), allow(bobSID, security.Read)),
		"/data/projects/src": descriptor(bobSID, deny(bobSID, security.Write), allow(orphanSID, security.Modify)),
		"/data/.cache":       descriptor(aliceSID, allow(aliceSID, security.FullControl)),
	}}
	lookup := &fakeLookup{accounts: map[string]fakeAccount{
		aliceSID.String(): {"alice", "CORP", security.SidTypeUser},
		bobSID.String():   {"bob", "CORP", security.SidTypeUser},
	}}
	return &fixture{
		elevated: true,
		fs:       mfs,
		source:   source,
		lookup:   lookup,
		deps: Deps{
			Enum:      deniedEnum{Enumerator: walker.NewFsEnumerator(mfs), denied: map[string]bool{"/data/private": true}},
			Source:    source,
			Shortener: identityShortener{},
			Lookup:    lookup,
		},
	}
}

// run executes the command tree against the fixture and returns stdout,
// stderr and the command error.
func (f *fixture) run(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()

	prevDeps, prevFs, prevElevated := NewDeps, DefaultFs, IsElevatedFunc
	NewDeps = func() Deps { return f.deps }
	DefaultFs = f.fs
	IsElevatedFunc = func() (bool, error) { return f.elevated, nil }
	t.Cleanup(func() {
		NewDeps, DefaultFs, IsElevatedFunc = prevDeps, prevFs, prevElevated
	})

	cmd := NewRootCmd("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}
