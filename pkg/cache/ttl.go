// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides the four bounded, TTL-bounded, LRU-eviction
// caches that accelerate hot query results (C4): file-content, ast,
// search, and symbol.
package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TTLCache wraps hashicorp/golang-lru's bounded eviction with a per-entry
// expiry, which the library itself does not provide. Entries past their
// TTL are treated as misses on Get and swept by Prune.
type TTLCache[K comparable, V any] struct {
	mu      sync.Mutex
	inner   *lru.Cache[K, entry[V]]
	ttl     time.Duration
	clock   func() time.Time
	hits    int64
	misses  int64
}

type entry[V any] struct {
	value    V
	expireAt time.Time
}

// NewTTLCache builds a cache bounded to size entries, each valid for ttl.
func NewTTLCache[K comparable, V any](size int, ttl time.Duration) (*TTLCache[K, V], error) {
	inner, err := lru.New[K, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache[K, V]{inner: inner, ttl: ttl, clock: time.Now}, nil
}

// Get returns (value, true) if present and not expired. An expired entry
// is evicted eagerly so it doesn't linger until the next Prune.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.inner.Get(key)
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	if c.clock().After(e.expireAt) {
		c.inner.Remove(key)
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Put inserts or replaces key's value, resetting its TTL. Eviction of the
// LRU tail when the cache is full is handled by the wrapped lru.Cache.
func (c *TTLCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Add(key, entry[V]{value: value, expireAt: c.clock().Add(c.ttl)})
}

// Remove drops key if present; a no-op otherwise.
func (c *TTLCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Remove(key)
}

// Clear empties the cache, used on a full re-index.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Purge()
}

// Prune removes every expired entry. Called periodically by the
// background pruner; also safe to call directly from tests.
func (c *TTLCache[K, V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	var expired []K
	for _, key := range c.inner.Keys() {
		if e, ok := c.inner.Peek(key); ok && now.After(e.expireAt) {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		c.inner.Remove(key)
	}
	return len(expired)
}

// Stats reports cumulative hit/miss counts and the current entry count.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

func (c *TTLCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: c.inner.Len()}
}
