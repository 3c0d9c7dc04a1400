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
	"strconv"
	"strings"
)

const (
	sidRevision          = 1
	sidMaxSubAuthorities = 15
	sidHeaderLen         = 8
)

// Well-known authorities used by the portable backend.
const (
	AuthorityWorld     = 1
	AuthorityCreator   = 3
	AuthorityNT        = 5
	AuthorityUnixUsers = 22
)

// SID is a security identifier held in its binary (self-relative) form. The
// zero value is an empty SID.
type SID struct {
	b []byte
}

// NewSID builds a SID from an identifier authority and its sub-authorities.
func NewSID(authority uint64, subAuthorities ...uint32) SID {
	if len(subAuthorities) > sidMaxSubAuthorities {
		subAuthorities = subAuthorities[:sidMaxSubAuthorities]
	}
	b := make([]byte, sidHeaderLen+4*len(subAuthorities))
	b[0] = sidRevision
	b[1] = byte(len(subAuthorities))
	// The identifier authority is a 48-bit big-endian value.
	for i := 0; i < 6; i++ {
		b[2+i] = byte(authority >> (8 * (5 - i)))
	}
	for i, sub := range subAuthorities {
		binary.LittleEndian.PutUint32(b[sidHeaderLen+4*i:], sub)
	}
	return SID{b: b}
}

// SIDFromBytes validates and copies a binary SID. Trailing bytes beyond the
// length implied by the sub-authority count are ignored.
func SIDFromBytes(b []byte) (SID, error) {
	n, err := sidLength(b)
	if err != nil {
		return SID{}, err
	}
	out := make([]byte, n)
	copy(out, b[:n])
	return SID{b: out}, nil
}

func sidLength(b []byte) (int, error) {
	if len(b) < sidHeaderLen {
		return 0, fmt.Errorf("%w: SID needs %d bytes, have %d", ErrMalformed, sidHeaderLen, len(b))
	}
	if b[0] != sidRevision {
		return 0, fmt.Errorf("%w: unsupported SID revision %d", ErrMalformed, b[0])
	}
	count := int(b[1])
	if count > sidMaxSubAuthorities {
		return 0, fmt.Errorf("%w: SID has %d sub-authorities", ErrMalformed, count)
	}
	n := sidHeaderLen + 4*count
	if len(b) < n {
		return 0, fmt.Errorf("%w: SID needs %d bytes, have %d", ErrMalformed, n, len(b))
	}
	return n, nil
}

// ParseSID parses the textual S-R-I-S-S... form.
func ParseSID(s string) (SID, error) {
	parts := strings.Split(s, "-")
	if len(parts) < 3 || !strings.EqualFold(parts[0], "S") {
		return SID{}, fmt.Errorf("%w: invalid SID string %q", ErrMalformed, s)
	}
	rev, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil || rev != sidRevision {
		return SID{}, fmt.Errorf("%w: invalid SID revision in %q", ErrMalformed, s)
	}
	var authority uint64
	if strings.HasPrefix(parts[2], "0x") || strings.HasPrefix(parts[2], "0X") {
		authority, err = strconv.ParseUint(parts[2][2:], 16, 48)
	} else {
		authority, err = strconv.ParseUint(parts[2], 10, 48)
	}
	if err != nil {
		return SID{}, fmt.Errorf("%w: invalid SID authority in %q", ErrMalformed, s)
	}
	subs := make([]uint32, 0, len(parts)-3)
	for _, p := range parts[3:] {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return SID{}, fmt.Errorf("%w: invalid SID sub-authority %q in %q", ErrMalformed, p, s)
		}
		subs = append(subs, uint32(v))
	}
	if len(subs) > sidMaxSubAuthorities {
		return SID{}, fmt.Errorf("%w: too many sub-authorities in %q", ErrMalformed, s)
	}
	return NewSID(authority, subs...), nil
}

// MustParseSID is ParseSID for package-level tables and tests.
func MustParseSID(s string) SID {
	sid, err := ParseSID(s)
	if err != nil {
		panic(err)
	}
	return sid
}

// IsEmpty reports whether the SID holds no bytes.
func (s SID) IsEmpty() bool { return len(s.b) == 0 }

// Len returns the encoded length in bytes.
func (s SID) Len() int { return len(s.b) }

// Bytes returns a copy of the binary form.
func (s SID) Bytes() []byte {
	out := make([]byte, len(s.b))
	copy(out, s.b)
	return out
}

// Authority returns the 48-bit identifier authority.
func (s SID) Authority() uint64 {
	if len(s.b) < sidHeaderLen {
		return 0
	}
	var a uint64
	for i := 0; i < 6; i++ {
		a = a<<8 | uint64(s.b[2+i])
	}
	return a
}

// SubAuthorities returns the sub-authority values in order.
func (s SID) SubAuthorities() []uint32 {
	if len(s.b) < sidHeaderLen {
		return nil
	}
	count := int(s.b[1])
	subs := make([]uint32, count)
	for i := range subs {
		subs[i] = binary.LittleEndian.Uint32(s.b[sidHeaderLen+4*i:])
	}
	return subs
}

// Equal compares two SIDs byte for byte.
func (s SID) Equal(other SID) bool {
	return string(s.b) == string(other.b)
}

// String renders the SID as S-1-5-32-544. Authorities that do not fit in 32
// bits are printed in hex, matching ConvertSidToStringSid.
func (s SID) String() string {
	if len(s.b) < sidHeaderLen {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("S-")
	sb.WriteString(strconv.Itoa(int(s.b[0])))
	sb.WriteByte('-')
	a := s.Authority()
	if a >= 1<<32 {
		sb.WriteString(fmt.Sprintf("0x%012X", a))
	} else {
		sb.WriteString(strconv.FormatUint(a, 10))
	}
	for _, sub := range s.SubAuthorities() {
		sb.WriteByte('-')
		sb.WriteString(strconv.FormatUint(uint64(sub), 10))
	}
	return sb.String()
}

// MarshalText renders the SID in its textual form.
func (s SID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnixUserSID maps a POSIX uid into the S-1-22-1 domain used by Samba.
func UnixUserSID(uid uint32) SID { return NewSID(AuthorityUnixUsers, 1, uid) }

// UnixGroupSID maps a POSIX gid into the S-1-22-2 domain used by Samba.
func UnixGroupSID(gid uint32) SID { return NewSID(AuthorityUnixUsers, 2, gid) }
