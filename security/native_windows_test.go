//go:build windows
// +build windows

package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNativeSourceDACL(t *testing.T) {
	raw, err := NativeSource{}.SecurityDescriptor(t.TempDir(), DaclSecurityInformation)
	require.NoError(t, err)

	sd, err := ParseDescriptor(raw)
	require.NoError(t, err)
	require.NotNil(t, sd.DACL())
	require.NotZero(t, sd.DACL().AclSizeInformation().AceCount)
}

func TestNativeSourceOwner(t *testing.T) {
	raw, err := NativeSource{}.SecurityDescriptor(t.TempDir(), OwnerSecurityInformation)
	require.NoError(t, err)

	sd, err := ParseDescriptor(raw)
	require.NoError(t, err)
	require.False(t, sd.Owner().IsEmpty())
}

func TestNativeSourceMissingPath(t *testing.T) {
	_, err := NativeSource{}.SecurityDescriptor(filepath.Join(t.TempDir(), "missing"), DaclSecurityInformation)
	require.Error(t, err)
}

func TestNativeLookupSizeThenFill(t *testing.T) {
	system := MustParseSID("S-1-5-18")

	nameLen, domainLen, _, err := NativeLookup{}.LookupAccountSid(system, nil, nil)
	require.ErrorIs(t, err, ErrInsufficientBuffer)
	require.NotZero(t, nameLen)
	require.NotZero(t, domainLen)

	acct, err := NewResolver(NativeLookup{}).LookupAccount(system)
	require.NoError(t, err)
	require.Equal(t, `NT AUTHORITY\SYSTEM`, acct.QualifiedName())
	require.Equal(t, WellknownGroup, acct.AccountType)
}

func TestNativeShortenerLongPath(t *testing.T) {
	dir := t.TempDir()
	for len(dir) <= maxPath {
		dir = filepath.Join(dir, strings.Repeat("LongFolderName", 3))
	}
	require.NoError(t, os.MkdirAll(dir, 0o755))

	short, err := NativeShortener{}.ShortPath(dir)
	require.NoError(t, err)
	require.NotEmpty(t, short)

	want, err := os.Stat(dir)
	require.NoError(t, err)
	got, err := os.Stat(short)
	require.NoError(t, err)
	require.True(t, os.SameFile(want, got))
}

func TestNativeOwnerAndAcl(t *testing.T) {
	dir := t.TempDir()

	owner, err := NewOwnerResolver(nil).ResolveOwner(dir)
	require.NoError(t, err)
	require.Contains(t, owner, `\`)

	acls, err := NewExtractor(nil).GetAclView(dir)
	require.NoError(t, err)
	require.NotEmpty(t, acls)
}
