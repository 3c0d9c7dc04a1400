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

	"github.com/spf13/afero"
)

// DescriptorSource returns an owned copy of a path's self-relative security
// descriptor restricted to the requested parts.
type DescriptorSource interface {
	SecurityDescriptor(path string, info SecurityInformation) ([]byte, error)
}

// PathShortener converts a path to a form the security APIs accept
// regardless of its length.
type PathShortener interface {
	ShortPath(path string) (string, error)
}

// OwnerResolver finds the account that owns a path.
type OwnerResolver struct {
	Source    DescriptorSource
	Shortener PathShortener
	Lookup    AccountLookup
}

// NewOwnerResolver returns an OwnerResolver backed by the platform defaults.
func NewOwnerResolver(fs afero.Fs) *OwnerResolver {
	return &OwnerResolver{
		Source:    NewDefaultSource(fs),
		Shortener: DefaultShortener(),
		Lookup:    DefaultLookup(),
	}
}

// ResolveOwner returns the owner of path as domain\account. Every failure
// is a *NativeError wrapping ErrOwnerLookup.
func (o *OwnerResolver) ResolveOwner(path string) (string, error) {
	target := path
	if o.Shortener != nil {
		// Paths without a short form are queried as given.
		if short, err := o.Shortener.ShortPath(path); err == nil && short != "" {
			target = short
		}
	}

	raw, err := o.Source.SecurityDescriptor(target, OwnerSecurityInformation)
	if err != nil {
		return "", ownerError("query owner", path, err)
	}
	sd, err := ParseDescriptor(raw)
	if err != nil {
		return "", ownerError("decode owner", path, err)
	}
	if sd.Owner().IsEmpty() {
		return "", ownerError("decode owner", path, fmt.Errorf("%w: descriptor carries no owner", ErrMalformed))
	}

	acct, err := NewResolver(o.Lookup).LookupAccount(sd.Owner())
	if err != nil {
		return "", ownerError("lookup owner account", path, err)
	}
	return acct.QualifiedName(), nil
}

func ownerError(op, path string, err error) error {
	return newNativeError(op, path, ErrOwnerLookup, err)
}
