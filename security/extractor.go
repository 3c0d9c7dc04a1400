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

	"github.com/apex/log"
	"github.com/spf13/afero"
)

// Extractor reads the DACL of a path and turns each ACE into an Acl.
type Extractor struct {
	Source   DescriptorSource
	Resolver AccountResolver
	// IncludeUnresolved keeps ACEs whose SID has no account name, listing
	// them under the SID string. They are dropped otherwise.
	IncludeUnresolved bool
	Logger            log.Interface
}

// NewExtractor returns an Extractor backed by the platform defaults.
func NewExtractor(fs afero.Fs) *Extractor {
	return &Extractor{
		Source:   NewDefaultSource(fs),
		Resolver: NewResolver(DefaultLookup()),
		Logger:   log.Log,
	}
}

// GetAclView lists the access rules of path in DACL order. A failed
// descriptor query is returned as a *NativeError wrapping ErrSecurityQuery.
// A descriptor without a DACL yields an empty list.
func (e *Extractor) GetAclView(path string) ([]Acl, error) {
	logger := e.Logger
	if logger == nil {
		logger = log.Log
	}

	raw, err := e.Source.SecurityDescriptor(path, DaclSecurityInformation)
	if err != nil {
		return nil, newNativeError("query DACL", path, ErrSecurityQuery, err)
	}
	sd, err := ParseDescriptor(raw)
	if err != nil {
		return nil, fmt.Errorf("decode security descriptor of %s: %w", path, err)
	}

	acls := []Acl{}
	dacl := sd.DACL()
	if dacl == nil {
		return acls, nil
	}

	info := dacl.AclSizeInformation()
	for i := 0; i < int(info.AceCount); i++ {
		ace, err := dacl.Ace(i)
		if err != nil {
			return nil, fmt.Errorf("decode DACL of %s: %w", path, err)
		}

		acct := e.Resolver.Resolve(ace.SID)
		name := acct.QualifiedName()
		accountType := acct.AccountType
		if name == "" {
			if !e.IncludeUnresolved {
				logger.WithFields(log.Fields{"path": path, "sid": ace.SID.String()}).Debug("skipping ACE with unresolved SID")
				continue
			}
			name = ace.SID.String()
			accountType = Unclassified
		}

		acls = append(acls, Acl{
			AccountName:      name,
			AccessType:       ace.AccessType(),
			Rights:           RightsFromMask(ace.Mask),
			Inherited:        ace.Inherited(),
			InheritanceFlags: ace.InheritanceFlags(),
			PropagationFlags: ace.PropagationFlags(),
			AccountType:      accountType,
			AceType:          ace.Type,
		})
	}
	return acls, nil
}
