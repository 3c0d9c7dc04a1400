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

package security

import (
	"encoding/binary"
	"fmt"
)

const (
	descriptorHeaderLen = 20
	aclHeaderLen        = 8
	aceHeaderLen        = 4
	guidLen             = 16

	descriptorRevision = 1
	aclRevision        = 2
	aclRevisionDS      = 4

	sePresentDACL   = 0x0004
	seSelfRelative  = 0x8000
	aceObjectType   = 0x1
	aceInheritedObj = 0x2
)

// ACE type codes.
const (
	AceTypeAccessAllowed               uint8 = 0x0
	AceTypeAccessDenied                uint8 = 0x1
	AceTypeSystemAudit                 uint8 = 0x2
	AceTypeSystemAlarm                 uint8 = 0x3
	AceTypeAccessAllowedCompound       uint8 = 0x4
	AceTypeAccessAllowedObject         uint8 = 0x5
	AceTypeAccessDeniedObject          uint8 = 0x6
	AceTypeSystemAuditObject           uint8 = 0x7
	AceTypeSystemAlarmObject           uint8 = 0x8
	AceTypeAccessAllowedCallback       uint8 = 0x9
	AceTypeAccessDeniedCallback        uint8 = 0xA
	AceTypeAccessAllowedCallbackObject uint8 = 0xB
	AceTypeAccessDeniedCallbackObject  uint8 = 0xC
	AceTypeSystemAuditCallback         uint8 = 0xD
	AceTypeSystemAlarmCallback         uint8 = 0xE
	AceTypeSystemAuditCallbackObject   uint8 = 0xF
	AceTypeSystemAlarmCallbackObject   uint8 = 0x10
)

// ACE header flags.
const (
	AceFlagObjectInherit      uint8 = 0x1
	AceFlagContainerInherit   uint8 = 0x2
	AceFlagNoPropagateInherit uint8 = 0x4
	AceFlagInheritOnly        uint8 = 0x8
	AceFlagInherited          uint8 = 0x10
)

func isObjectAce(t uint8) bool {
	switch t {
	case AceTypeAccessAllowedObject, AceTypeAccessDeniedObject,
		AceTypeSystemAuditObject, AceTypeSystemAlarmObject,
		AceTypeAccessAllowedCallbackObject, AceTypeAccessDeniedCallbackObject,
		AceTypeSystemAuditCallbackObject, AceTypeSystemAlarmCallbackObject:
		return true
	}
	return false
}

// Descriptor is a decoded self-relative security descriptor. It owns its
// bytes; nothing points into memory the caller may release.
type Descriptor struct {
	control uint16
	owner   SID
	group   SID
	dacl    *ACL
}

// ParseDescriptor decodes a self-relative security descriptor.
func ParseDescriptor(b []byte) (*Descriptor, error) {
	if len(b) < descriptorHeaderLen {
		return nil, fmt.Errorf("%w: descriptor needs %d bytes, have %d", ErrMalformed, descriptorHeaderLen, len(b))
	}
	if b[0] != descriptorRevision {
		return nil, fmt.Errorf("%w: unsupported descriptor revision %d", ErrMalformed, b[0])
	}
	d := &Descriptor{control: binary.LittleEndian.Uint16(b[2:])}
	if d.control&seSelfRelative == 0 {
		return nil, fmt.Errorf("%w: descriptor is not self-relative", ErrMalformed)
	}
	ownerOff := binary.LittleEndian.Uint32(b[4:])
	groupOff := binary.LittleEndian.Uint32(b[8:])
	daclOff := binary.LittleEndian.Uint32(b[16:])

	var err error
	if d.owner, err = sidAt(b, ownerOff); err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	if d.group, err = sidAt(b, groupOff); err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}
	if d.control&sePresentDACL != 0 && daclOff != 0 {
		if uint64(daclOff) >= uint64(len(b)) {
			return nil, fmt.Errorf("%w: DACL offset %d outside descriptor of %d bytes", ErrMalformed, daclOff, len(b))
		}
		if d.dacl, err = ParseACL(b[daclOff:]); err != nil {
			return nil, fmt.Errorf("DACL: %w", err)
		}
	}
	return d, nil
}

func sidAt(b []byte, off uint32) (SID, error) {
	if off == 0 {
		return SID{}, nil
	}
	if uint64(off) >= uint64(len(b)) {
		return SID{}, fmt.Errorf("%w: SID offset %d outside descriptor of %d bytes", ErrMalformed, off, len(b))
	}
	return SIDFromBytes(b[off:])
}

// Owner returns the owner SID, which is empty when it was not requested.
func (d *Descriptor) Owner() SID { return d.owner }

// Group returns the primary group SID, which is empty when it was not requested.
func (d *Descriptor) Group() SID { return d.group }

// DACL returns the discretionary ACL, or nil when the descriptor has none.
func (d *Descriptor) DACL() *ACL { return d.dacl }

// ACL is a decoded access control list. ACE offsets are validated once at
// parse time.
type ACL struct {
	b       []byte
	offsets []int
	inUse   uint32
}

// AclSizeInfo mirrors ACL_SIZE_INFORMATION.
type AclSizeInfo struct {
	AceCount      uint32
	AclBytesInUse uint32
	AclBytesFree  uint32
}

// ParseACL decodes an ACL header and indexes its ACEs.
func ParseACL(b []byte) (*ACL, error) {
	if len(b) < aclHeaderLen {
		return nil, fmt.Errorf("%w: ACL needs %d bytes, have %d", ErrMalformed, aclHeaderLen, len(b))
	}
	if rev := b[0]; rev != aclRevision && rev != aclRevisionDS {
		return nil, fmt.Errorf("%w: unsupported ACL revision %d", ErrMalformed, rev)
	}
	size := int(binary.LittleEndian.Uint16(b[2:]))
	count := int(binary.LittleEndian.Uint16(b[4:]))
	if size < aclHeaderLen || size > len(b) {
		return nil, fmt.Errorf("%w: ACL size %d, have %d bytes", ErrMalformed, size, len(b))
	}
	acl := &ACL{b: make([]byte, size), offsets: make([]int, 0, count)}
	copy(acl.b, b[:size])

	off := aclHeaderLen
	for i := 0; i < count; i++ {
		if off+aceHeaderLen > size {
			return nil, fmt.Errorf("%w: ACE %d header past end of ACL", ErrMalformed, i)
		}
		aceSize := int(binary.LittleEndian.Uint16(acl.b[off+2:]))
		if aceSize < aceHeaderLen || off+aceSize > size {
			return nil, fmt.Errorf("%w: ACE %d has size %d at offset %d in ACL of %d bytes", ErrMalformed, i, aceSize, off, size)
		}
		acl.offsets = append(acl.offsets, off)
		off += aceSize
	}
	acl.inUse = uint32(off)
	return acl, nil
}

// AclSizeInformation reports the ACE count and byte usage of the ACL.
func (a *ACL) AclSizeInformation() AclSizeInfo {
	return AclSizeInfo{
		AceCount:      uint32(len(a.offsets)),
		AclBytesInUse: a.inUse,
		AclBytesFree:  uint32(len(a.b)) - a.inUse,
	}
}

// Ace decodes the ACE at index i.
func (a *ACL) Ace(i int) (Ace, error) {
	if i < 0 || i >= len(a.offsets) {
		return Ace{}, fmt.Errorf("%w: ACE index %d out of range [0,%d)", ErrMalformed, i, len(a.offsets))
	}
	off := a.offsets[i]
	size := int(binary.LittleEndian.Uint16(a.b[off+2:]))
	raw := a.b[off : off+size]

	ace := Ace{Type: raw[0], Flags: raw[1], Size: uint16(size)}
	if size < aceHeaderLen+4 {
		return Ace{}, fmt.Errorf("%w: ACE %d too short for an access mask", ErrMalformed, i)
	}
	ace.Mask = binary.LittleEndian.Uint32(raw[4:])

	sidOff, err := aceSIDOffset(ace.Type, raw)
	if err != nil {
		return Ace{}, fmt.Errorf("ACE %d: %w", i, err)
	}
	if ace.SID, err = SIDFromBytes(raw[sidOff:]); err != nil {
		return Ace{}, fmt.Errorf("ACE %d: %w", i, err)
	}
	return ace, nil
}

// aceSIDOffset finds the trustee SID. Plain ACEs carry it right after the
// mask; object ACEs put a flags word and up to two GUIDs in between.
func aceSIDOffset(aceType uint8, raw []byte) (int, error) {
	off := aceHeaderLen + 4
	if !isObjectAce(aceType) {
		return off, nil
	}
	if len(raw) < off+4 {
		return 0, fmt.Errorf("%w: object ACE too short for its flags", ErrMalformed)
	}
	flags := binary.LittleEndian.Uint32(raw[off:])
	off += 4
	if flags&aceObjectType != 0 {
		off += guidLen
	}
	if flags&aceInheritedObj != 0 {
		off += guidLen
	}
	if off > len(raw) {
		return 0, fmt.Errorf("%w: object ACE too short for its GUIDs", ErrMalformed)
	}
	return off, nil
}

// Ace is one decoded access control entry.
type Ace struct {
	Type  uint8
	Flags uint8
	Size  uint16
	Mask  uint32
	SID   SID
}

// AccessType is Deny only for the access-denied type code. Every other
// type, audit and object types included, reads as Allow.
func (a Ace) AccessType() AccessType {
	if a.Type == AceTypeAccessDenied {
		return Deny
	}
	return Allow
}

func (a Ace) InheritanceFlags() InheritanceFlags {
	var f InheritanceFlags
	if a.Flags&AceFlagContainerInherit != 0 {
		f |= ContainerInherit
	}
	if a.Flags&AceFlagObjectInherit != 0 {
		f |= ObjectInherit
	}
	return f
}

func (a Ace) PropagationFlags() PropagationFlags {
	var f PropagationFlags
	if a.Flags&AceFlagNoPropagateInherit != 0 {
		f |= NoPropagateInherit
	}
	if a.Flags&AceFlagInheritOnly != 0 {
		f |= InheritOnly
	}
	return f
}

func (a Ace) Inherited() bool { return a.Flags&AceFlagInherited != 0 }

// AceSpec describes an ACE for DescriptorSpec.
type AceSpec struct {
	Type  uint8
	Flags uint8
	Mask  uint32
	SID   SID
	// Object ACE fields, used only for object ACE types.
	ObjectType          *[16]byte
	InheritedObjectType *[16]byte
}

func (s AceSpec) encode() []byte {
	var body []byte
	if isObjectAce(s.Type) {
		var flags uint32
		var guids []byte
		if s.ObjectType != nil {
			flags |= aceObjectType
			guids = append(guids, s.ObjectType[:]...)
		}
		if s.InheritedObjectType != nil {
			flags |= aceInheritedObj
			guids = append(guids, s.InheritedObjectType[:]...)
		}
		body = binary.LittleEndian.AppendUint32(body, flags)
		body = append(body, guids...)
	}
	body = append(body, s.SID.b...)

	size := aceHeaderLen + 4 + len(body)
	b := make([]byte, 0, size)
	b = append(b, s.Type, s.Flags)
	b = binary.LittleEndian.AppendUint16(b, uint16(size))
	b = binary.LittleEndian.AppendUint32(b, s.Mask)
	return append(b, body...)
}

// DescriptorSpec describes a self-relative security descriptor. The portable
// backend synthesizes descriptors with it and tests build fixtures with it.
type DescriptorSpec struct {
	Owner  SID
	Group  SID
	DACL   []AceSpec
	NoDACL bool
}

// Bytes encodes the descriptor as header, owner, group, then DACL.
func (s DescriptorSpec) Bytes() []byte {
	b := make([]byte, descriptorHeaderLen)
	b[0] = descriptorRevision
	control := uint16(seSelfRelative)

	if !s.Owner.IsEmpty() {
		binary.LittleEndian.PutUint32(b[4:], uint32(len(b)))
		b = append(b, s.Owner.b...)
	}
	if !s.Group.IsEmpty() {
		binary.LittleEndian.PutUint32(b[8:], uint32(len(b)))
		b = append(b, s.Group.b...)
	}
	if !s.NoDACL {
		control |= sePresentDACL
		binary.LittleEndian.PutUint32(b[16:], uint32(len(b)))
		var aces []byte
		for _, ace := range s.DACL {
			aces = append(aces, ace.encode()...)
		}
		acl := make([]byte, aclHeaderLen, aclHeaderLen+len(aces))
		acl[0] = aclRevision
		binary.LittleEndian.PutUint16(acl[2:], uint16(aclHeaderLen+len(aces)))
		binary.LittleEndian.PutUint16(acl[4:], uint16(len(s.DACL)))
		b = append(b, append(acl, aces...)...)
	}
	binary.LittleEndian.PutUint16(b[2:], control)
	return b
}
