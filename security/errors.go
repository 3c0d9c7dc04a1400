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
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrInsufficientBuffer is returned by an AccountLookup when the supplied
	// buffers are too small. The returned lengths hold the required sizes.
	ErrInsufficientBuffer = errors.New("insufficient buffer")
	// ErrMalformed marks a security descriptor, ACL, ACE or SID that does not
	// decode within its declared bounds.
	ErrMalformed = errors.New("malformed security structure")
	// ErrSecurityQuery marks a failed security descriptor query.
	ErrSecurityQuery = errors.New("security query failed")
	// ErrOwnerLookup marks a failed owner resolution.
	ErrOwnerLookup = errors.New("owner lookup failed")
	// ErrNotMapped is returned when an account lookup finds no name for a SID.
	ErrNotMapped = errors.New("no mapping between account name and security ID")
)

// NativeError carries the status code and formatted message of a failed
// platform call.
type NativeError struct {
	Op   string
	Path string
	Code uint32
	Err  error
}

func (e *NativeError) Error() string {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s (code %d)", e.Op, e.Path, msg, e.Code)
	}
	return fmt.Sprintf("%s: %s (code %d)", e.Op, msg, e.Code)
}

func (e *NativeError) Unwrap() error { return e.Err }

// newNativeError tags err with class, lifting the errno out of it when there
// is one.
func newNativeError(op, path string, class, err error) *NativeError {
	return &NativeError{
		Op:   op,
		Path: path,
		Code: errorCode(err),
		Err:  fmt.Errorf("%w: %w", class, err),
	}
}

func errorCode(err error) uint32 {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return uint32(errno)
	}
	return 0
}
