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
	"fmt"
	"strings"
	"sync"
)

// Rights is a file system access mask expressed in the symbolic values
// used by Windows tooling.
type Rights uint32

const (
	ReadData                     Rights = 0x1
	WriteData                    Rights = 0x2
	AppendData                   Rights = 0x4
	ReadExtendedAttributes       Rights = 0x8
	WriteExtendedAttributes      Rights = 0x10
	ExecuteFile                  Rights = 0x20
	DeleteSubdirectoriesAndFiles Rights = 0x40
	ReadAttributes               Rights = 0x80
	WriteAttributes              Rights = 0x100
	Delete                       Rights = 0x10000
	ReadPermissions              Rights = 0x20000
	ChangePermissions            Rights = 0x40000
	TakeOwnership                Rights = 0x80000
	Synchronize                  Rights = 0x100000

	GenericAll     Rights = 0x10000000
	GenericExecute Rights = 0x20000000
	GenericWrite   Rights = 0x40000000
	GenericRead    Rights = 0x80000000

	Write          = WriteData | AppendData | WriteExtendedAttributes | WriteAttributes
	Read           = ReadData | ReadExtendedAttributes | ReadAttributes | ReadPermissions
	ReadAndExecute = Read | ExecuteFile
	Modify         = Write | ReadAndExecute | Delete
	FullControl    = Modify | DeleteSubdirectoriesAndFiles | ChangePermissions | TakeOwnership | Synchronize
)

type namedRight struct {
	name  string
	value Rights
}

// rightsTable lists every known right, composites first, so String prefers
// the widest names.
var rightsTable = sync.OnceValue(func() []namedRight {
	return []namedRight{
		{"FullControl", FullControl},
		{"Modify", Modify},
		{"ReadAndExecute", ReadAndExecute},
		{"Read", Read},
		{"Write", Write},
		{"GenericAll", GenericAll},
		{"GenericRead", GenericRead},
		{"GenericWrite", GenericWrite},
		{"GenericExecute", GenericExecute},
		{"ReadData", ReadData},
		{"WriteData", WriteData},
		{"AppendData", AppendData},
		{"ReadExtendedAttributes", ReadExtendedAttributes},
		{"WriteExtendedAttributes", WriteExtendedAttributes},
		{"ExecuteFile", ExecuteFile},
		{"DeleteSubdirectoriesAndFiles", DeleteSubdirectoriesAndFiles},
		{"ReadAttributes", ReadAttributes},
		{"WriteAttributes", WriteAttributes},
		{"Delete", Delete},
		{"ReadPermissions", ReadPermissions},
		{"ChangePermissions", ChangePermissions},
		{"TakeOwnership", TakeOwnership},
		{"Synchronize", Synchronize},
	}
})

// RightsFromMask rebuilds the symbolic rights from a raw access mask: every
// known value fully contained in the mask is OR-ed in. Bits that belong to
// no known right are dropped.
func RightsFromMask(mask uint32) Rights {
	var r Rights
	for _, nr := range rightsTable() {
		if Rights(mask)&nr.value == nr.value {
			r |= nr.value
		}
	}
	return r
}

// Has reports whether every bit of want is present.
func (r Rights) Has(want Rights) bool { return r&want == want }

func (r Rights) String() string {
	if r == 0 {
		return "None"
	}
	var parts []string
	rest := r
	for _, nr := range rightsTable() {
		if rest&nr.value == nr.value && rest&nr.value != 0 {
			parts = append(parts, nr.name)
			rest &^= nr.value
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, ", ")
}

func (r Rights) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
