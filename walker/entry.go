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
)

// ErrDirectoryNotFound is returned when a directory to enumerate does not
// exist or is not a directory. It is fatal for the call, unlike access
// denied which is reported per entry.
var ErrDirectoryNotFound = errors.New("directory not found")

// Attributes are the Win32 file attribute bits of an entry.
type Attributes uint32

const (
	AttrReadOnly     Attributes = 0x1
	AttrHidden       Attributes = 0x2
	AttrSystem       Attributes = 0x4
	AttrDirectory    Attributes = 0x10
	AttrArchive      Attributes = 0x20
	AttrTemporary    Attributes = 0x100
	AttrReparsePoint Attributes = 0x400
)

// Entry is one record returned by a directory enumeration. A non-nil Err
// marks the entry as invalid or access denied.
type Entry struct {
	Name       string
	Attributes Attributes
	SizeHigh   uint32
	SizeLow    uint32
	Err        error
}

// Invalid reports an entry that carries no usable name or failed for a
// reason other than access.
func (e Entry) Invalid() bool {
	return (e.Err != nil && !e.AccessDenied()) || (e.Err == nil && e.Name == "")
}

func (e Entry) AccessDenied() bool { return e.Err != nil && errors.Is(e.Err, fs.ErrPermission) }

func (e Entry) IsDir() bool       { return e.Attributes&AttrDirectory != 0 }
func (e Entry) IsHidden() bool    { return e.Attributes&AttrHidden != 0 }
func (e Entry) IsSystem() bool    { return e.Attributes&AttrSystem != 0 }
func (e Entry) IsTemporary() bool { return e.Attributes&AttrTemporary != 0 }

func (e Entry) IsCurrentDir() bool { return e.Name == "." }
func (e Entry) IsParentDir() bool  { return e.Name == ".." }

// Size joins the high and low halves of the file size.
func (e Entry) Size() uint64 { return uint64(e.SizeHigh)<<32 | uint64(e.SizeLow) }

func (e Entry) message() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid directory entry %q", e.Name)
}

func splitSize(n int64) (high, low uint32) {
	if n < 0 {
		return 0, 0
	}
	return uint32(uint64(n) >> 32), uint32(uint64(n))
}
