//go:build windows
// +build windows

package security

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/spf13/afero"
	"golang.org/x/sys/windows"
)

var (
	modadvapi32               = windows.NewLazySystemDLL("advapi32.dll")
	procGetNamedSecurityInfoW = modadvapi32.NewProc("GetNamedSecurityInfoW")
)

// localAlloc is memory returned by an API that the caller must LocalFree.
type localAlloc struct {
	p unsafe.Pointer
}

func (a localAlloc) Close() {
	if a.p != nil {
		windows.LocalFree(windows.Handle(uintptr(a.p)))
	}
}

// NativeSource queries security descriptors with GetNamedSecurityInfoW.
type NativeSource struct{}

// NewDefaultSource returns the descriptor source for this platform. Security
// descriptors live in NTFS itself, so fs is not consulted.
func NewDefaultSource(fs afero.Fs) DescriptorSource { return NativeSource{} }

func (NativeSource) SecurityDescriptor(path string, info SecurityInformation) ([]byte, error) {
	pPath, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	var sd *windows.SECURITY_DESCRIPTOR
	ret, _, _ := procGetNamedSecurityInfoW.Call(
		uintptr(unsafe.Pointer(pPath)),
		uintptr(windows.SE_FILE_OBJECT),
		uintptr(info),
		0,
		0,
		0,
		0,
		uintptr(unsafe.Pointer(&sd)),
	)
	if ret != 0 {
		return nil, syscall.Errno(ret)
	}
	if sd == nil {
		return nil, fmt.Errorf("GetNamedSecurityInfoW returned no descriptor")
	}
	defer localAlloc{p: unsafe.Pointer(sd)}.Close()

	n := sd.Length()
	if n == 0 {
		return nil, fmt.Errorf("GetSecurityDescriptorLength returned 0")
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(sd)), n))
	return out, nil
}
