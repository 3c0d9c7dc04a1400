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

package commands

import (
	"github.com/apex/log"
	"github.com/openpubkey/aclaudit/security"
	"github.com/openpubkey/aclaudit/walker"
	"github.com/spf13/afero"
)

// DefaultFs can be set by tests to use an in-memory filesystem. If nil,
// the commands will use the real OS filesystem.
var DefaultFs afero.Fs

// IsElevatedFunc is a testable indirection for elevation checks. By default
// it points to the platform-specific IsElevated implementation but tests may
// override it.
var IsElevatedFunc = IsElevated

// NewDeps builds the native collaborators used by every subcommand. Tests
// may override it to inject fakes.
var NewDeps = newDefaultDeps

// Deps are the platform collaborators behind the walker and the security
// queries.
type Deps struct {
	Enum      walker.Enumerator
	Source    security.DescriptorSource
	Shortener security.PathShortener
	Lookup    security.AccountLookup
}

func newDefaultDeps() Deps {
	enum := walker.NewDefaultEnumerator()
	if DefaultFs != nil {
		enum = walker.NewFsEnumerator(DefaultFs)
	}
	return Deps{
		Enum:      enum,
		Source:    security.NewDefaultSource(DefaultFs),
		Shortener: security.DefaultShortener(),
		Lookup:    security.DefaultLookup(),
	}
}

func (d Deps) owners() *security.OwnerResolver {
	return &security.OwnerResolver{
		Source:    d.Source,
		Shortener: d.Shortener,
		Lookup:    d.Lookup,
	}
}

func (d Deps) extractor(resolver security.AccountResolver, includeUnresolved bool, logger log.Interface) *security.Extractor {
	if resolver == nil {
		resolver = security.NewResolver(d.Lookup)
	}
	return &security.Extractor{
		Source:            d.Source,
		Resolver:          resolver,
		IncludeUnresolved: includeUnresolved,
		Logger:            logger,
	}
}

func (d Deps) walker(logger log.Interface) *walker.Walker {
	w := walker.NewWalker(d.Enum, d.owners())
	w.Logger = logger
	return w
}

func configFs() afero.Fs {
	if DefaultFs != nil {
		return DefaultFs
	}
	return afero.NewOsFs()
}
