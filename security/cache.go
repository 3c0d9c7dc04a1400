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
	"time"

	"github.com/patrickmn/go-cache"
)

// CachingResolver memoizes another resolver's answers by SID string. It is
// safe for concurrent use when the wrapped resolver is.
type CachingResolver struct {
	next  AccountResolver
	cache *cache.Cache
}

// NewCachingResolver caches results of next for ttl. A ttl of zero keeps
// entries for the lifetime of the resolver.
func NewCachingResolver(next AccountResolver, ttl time.Duration) *CachingResolver {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &CachingResolver{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachingResolver) Resolve(sid SID) ResolvedAccount {
	key := sid.String()
	if v, ok := c.cache.Get(key); ok {
		return v.(ResolvedAccount)
	}
	acct := c.next.Resolve(sid)
	c.cache.SetDefault(key, acct)
	return acct
}

// Len returns the number of cached accounts.
func (c *CachingResolver) Len() int { return c.cache.ItemCount() }
