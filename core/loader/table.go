package loader

import (
	"sync"

	"gtile/core/index"
	"gtile/core/tile"
)

const shardCount = 64

type shard struct {
	mu sync.RWMutex
	m  map[tile.Key]index.Entry
}

// Table is the in-memory lookup table from tile key to index entry. It is
// written concurrently during a load and read-only afterwards.
type Table struct {
	shards [shardCount]shard
}

// NewTable returns an empty table.
func NewTable() *Table {
	t := &Table{}
	for i := range t.shards {
		t.shards[i].m = make(map[tile.Key]index.Entry)
	}
	return t
}

func (t *Table) shardFor(k tile.Key) *shard {
	// Fibonacci hashing; the low bits of a key only reflect the last bases.
	return &t.shards[(uint64(k)*0x9E3779B97F4A7C15)>>58]
}

// Insert stores e under k unless k is already present. It reports whether e
// was stored; the first value written for a key wins.
func (t *Table) Insert(k tile.Key, e index.Entry) bool {
	s := t.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.m[k]; dup {
		return false
	}
	s.m[k] = e
	return true
}

// Lookup returns the entry stored for k.
func (t *Table) Lookup(k tile.Key) (index.Entry, bool) {
	s := t.shardFor(k)
	s.mu.RLock()
	e, ok := s.m[k]
	s.mu.RUnlock()
	return e, ok
}

// Len returns the number of keys.
func (t *Table) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}

// Range calls fn for every entry in unspecified order until fn returns false.
func (t *Table) Range(fn func(tile.Key, index.Entry) bool) {
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		for k, e := range s.m {
			if !fn(k, e) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}
