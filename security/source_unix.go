//go:build !windows
// +build !windows

package security

import (
	"io/fs"
	"os"
	"syscall"

	"github.com/spf13/afero"
)

// FsDescriptorSource synthesizes security descriptors from POSIX ownership
// and mode bits. The owner and group map into the S-1-22 domains and the mode
// becomes three Allow ACEs for owner, group and Everyone.
type FsDescriptorSource struct {
	Fs afero.Fs
}

// NewDefaultSource returns the descriptor source for this platform, reading
// ownership and modes through fs.
func NewDefaultSource(fs afero.Fs) DescriptorSource {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FsDescriptorSource{Fs: fs}
}

func (s *FsDescriptorSource) SecurityDescriptor(path string, info SecurityInformation) ([]byte, error) {
	if s.Fs == nil {
		s.Fs = afero.NewOsFs()
	}
	fi, err := s.Fs.Stat(path)
	if err != nil {
		return nil, err
	}
	uid, gid := ownerIDs(fi)

	sd := DescriptorSpec{NoDACL: info&DaclSecurityInformation == 0}
	if info&OwnerSecurityInformation != 0 {
		sd.Owner = UnixUserSID(uid)
	}
	if info&GroupSecurityInformation != 0 {
		sd.Group = UnixGroupSID(gid)
	}
	if !sd.NoDACL {
		sd.DACL = modeAces(fi.Mode().Perm(), uid, gid)
	}
	return sd.Bytes(), nil
}

// ownerIDs falls back to the current process for file systems that carry no
// ownership, such as afero's in-memory one.
func ownerIDs(fi fs.FileInfo) (uint32, uint32) {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return st.Uid, st.Gid
	}
	return uint32(os.Getuid()), uint32(os.Getgid())
}

func modeAces(perm fs.FileMode, uid, gid uint32) []AceSpec {
	trustees := []struct {
		sid   SID
		shift uint
	}{
		{UnixUserSID(uid), 6},
		{UnixGroupSID(gid), 3},
		{NewSID(AuthorityWorld, 0), 0},
	}
	var aces []AceSpec
	for _, t := range trustees {
		mask := modeBitsToMask(uint32(perm>>t.shift) & 0o7)
		if mask == 0 {
			continue
		}
		aces = append(aces, AceSpec{Type: AceTypeAccessAllowed, Mask: mask, SID: t.sid})
	}
	return aces
}

func modeBitsToMask(bits uint32) uint32 {
	var r Rights
	if bits&0o4 != 0 {
		r |= Read
	}
	if bits&0o2 != 0 {
		r |= Write
	}
	if bits&0o1 != 0 {
		r |= ExecuteFile
	}
	return uint32(r)
}
