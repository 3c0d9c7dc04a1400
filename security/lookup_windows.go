//go:build windows
// +build windows

package security

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// NativeLookup calls LookupAccountSidW. System names the machine to ask; an
// empty System asks the local machine.
type NativeLookup struct {
	System string
}

// DefaultLookup returns the account lookup for this platform.
func DefaultLookup() AccountLookup { return NativeLookup{} }

func (l NativeLookup) LookupAccountSid(sid SID, name, domain []uint16) (uint32, uint32, SidNameUse, error) {
	if sid.IsEmpty() {
		return 0, 0, 0, fmt.Errorf("%w: empty SID", ErrMalformed)
	}
	var system *uint16
	if l.System != "" {
		var err error
		if system, err = windows.UTF16PtrFromString(l.System); err != nil {
			return 0, 0, 0, err
		}
	}
	raw := sid.Bytes()
	wsid := (*windows.SID)(unsafe.Pointer(&raw[0]))

	nameLen := uint32(len(name))
	domainLen := uint32(len(domain))
	var pName, pDomain *uint16
	if len(name) > 0 {
		pName = &name[0]
	}
	if len(domain) > 0 {
		pDomain = &domain[0]
	}
	var use uint32
	err := windows.LookupAccountSid(system, wsid, pName, &nameLen, pDomain, &domainLen, &use)
	switch {
	case err == nil:
		return nameLen, domainLen, SidNameUse(use), nil
	case errors.Is(err, windows.ERROR_INSUFFICIENT_BUFFER):
		return nameLen, domainLen, 0, fmt.Errorf("%w: %w", ErrInsufficientBuffer, err)
	case errors.Is(err, windows.ERROR_NONE_MAPPED):
		return 0, 0, 0, fmt.Errorf("%w: %w", ErrNotMapped, err)
	default:
		return 0, 0, 0, err
	}
}
