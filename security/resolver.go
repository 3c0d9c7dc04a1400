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
	"unicode/utf16"
)

// AccountLookup is the account lookup primitive. It follows the
// LookupAccountSid buffer protocol: when name or domain is too small it
// returns ErrInsufficientBuffer together with the required lengths, including
// the terminating NUL. On success the lengths exclude the terminator.
type AccountLookup interface {
	LookupAccountSid(sid SID, name, domain []uint16) (nameLen, domainLen uint32, use SidNameUse, err error)
}

// AccountResolver turns SIDs into accounts. Resolver and CachingResolver
// implement it.
type AccountResolver interface {
	Resolve(sid SID) ResolvedAccount
}

// Resolver resolves SIDs with a call that sizes the buffers followed by
// exactly one retrieval call.
type Resolver struct {
	Lookup AccountLookup
}

func NewResolver(lookup AccountLookup) *Resolver {
	return &Resolver{Lookup: lookup}
}

// Resolve never fails; accounts that cannot be looked up come back with
// Unresolved set.
func (r *Resolver) Resolve(sid SID) ResolvedAccount {
	acct, err := r.LookupAccount(sid)
	if err != nil {
		return ResolvedAccount{SID: sid, Unresolved: true}
	}
	return acct
}

// LookupAccount is Resolve with the lookup failure returned.
func (r *Resolver) LookupAccount(sid SID) (ResolvedAccount, error) {
	if sid.IsEmpty() {
		return ResolvedAccount{}, fmt.Errorf("%w: empty SID", ErrMalformed)
	}
	nameLen, domainLen, _, err := r.Lookup.LookupAccountSid(sid, nil, nil)
	if err == nil {
		return ResolvedAccount{}, fmt.Errorf("%w: %s: sizing call returned no sizes", ErrNotMapped, sid)
	}
	if !errors.Is(err, ErrInsufficientBuffer) {
		return ResolvedAccount{}, fmt.Errorf("lookup %s: %w", sid, err)
	}

	name := make([]uint16, nameLen)
	domain := make([]uint16, domainLen)
	nameLen, domainLen, use, err := r.Lookup.LookupAccountSid(sid, name, domain)
	if err != nil {
		return ResolvedAccount{}, fmt.Errorf("lookup %s: %w", sid, err)
	}

	acct := ResolvedAccount{
		Name:   decodeUTF16(name, nameLen),
		Domain: decodeUTF16(domain, domainLen),
		SID:    sid,
	}
	if acct.Name == "" {
		return ResolvedAccount{}, fmt.Errorf("%w: %s", ErrNotMapped, sid)
	}
	if acct.Domain != "" {
		acct.AccountType = use.AccountType()
	}
	return acct, nil
}

// decodeUTF16 decodes at most n units of buf, stopping at the first NUL.
func decodeUTF16(buf []uint16, n uint32) string {
	if int(n) < len(buf) {
		buf = buf[:n]
	}
	for i, c := range buf {
		if c == 0 {
			buf = buf[:i]
			break
		}
	}
	return string(utf16.Decode(buf))
}

// fillAccount answers a lookup for a known account with the same buffer
// semantics as LookupAccountSid.
func fillAccount(name, domain string, use SidNameUse, nameBuf, domainBuf []uint16) (uint32, uint32, SidNameUse, error) {
	n := utf16.Encode([]rune(name))
	d := utf16.Encode([]rune(domain))
	if len(nameBuf) < len(n)+1 || len(domainBuf) < len(d)+1 {
		return uint32(len(n) + 1), uint32(len(d) + 1), 0, ErrInsufficientBuffer
	}
	copy(nameBuf, n)
	nameBuf[len(n)] = 0
	copy(domainBuf, d)
	domainBuf[len(d)] = 0
	return uint32(len(n)), uint32(len(d)), use, nil
}
