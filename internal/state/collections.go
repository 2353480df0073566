package state

import (
	"sync"
	"sync/atomic"

	"github.com/evoprobe/evoprobe/internal/model"
)

// atomicCollections is the swap point ClearState uses as its barrier.
type atomicCollections = atomic.Pointer[collections]

// entry pairs an entity with its own mutex so packet reducers, the recompute
// tick and snapshot readers can work on different entities without contending
// on a global lock.
type entry[T any] struct {
	mu sync.Mutex
	v  T
}

// with runs fn while holding the entry lock.
func (e *entry[T]) with(fn func(v T)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.v)
}

// table is a concurrent id-keyed collection of entities.
type table[T any] struct {
	m sync.Map // int64 -> *entry[T]
}

// getOrCreate returns the entry for id, creating it with create on first
// reference (upsert-on-first-reference semantics).
func (t *table[T]) getOrCreate(id int64, create func(int64) T) *entry[T] {
	if e, ok := t.m.Load(id); ok {
		return e.(*entry[T])
	}
	e, _ := t.m.LoadOrStore(id, &entry[T]{v: create(id)})
	return e.(*entry[T])
}

// get returns the entry for id if present.
func (t *table[T]) get(id int64) (*entry[T], bool) {
	e, ok := t.m.Load(id)
	if !ok {
		return nil, false
	}
	return e.(*entry[T]), true
}

// rangeAll visits every entry; fn returning false stops the walk.
func (t *table[T]) rangeAll(fn func(id int64, e *entry[T]) bool) {
	t.m.Range(func(k, v any) bool {
		return fn(k.(int64), v.(*entry[T]))
	})
}

// delete removes the entry for id.
func (t *table[T]) delete(id int64) {
	t.m.Delete(id)
}

// size counts entries (O(n), used by snapshots and tests only).
func (t *table[T]) size() int {
	n := 0
	t.m.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// collections is the whole entity graph. ClearState swaps the engine's
// pointer to a fresh collections value, so no reader ever observes a
// half-cleared graph.
type collections struct {
	player   entry[*model.Player]
	alliance entry[*model.Alliance]
	cities   table[*model.City]
	heroes   table[*model.Hero]
	armies   table[*model.Army]
	marches  table[*model.March]
}

func newCollections() *collections {
	return &collections{}
}

// withPlayer runs fn on the player singleton, creating it on first use.
func (c *collections) withPlayer(fn func(p *model.Player)) {
	c.player.mu.Lock()
	defer c.player.mu.Unlock()
	if c.player.v == nil {
		c.player.v = &model.Player{}
	}
	fn(c.player.v)
}

// withAlliance runs fn on the alliance singleton, creating it on first use.
func (c *collections) withAlliance(fn func(a *model.Alliance)) {
	c.alliance.mu.Lock()
	defer c.alliance.mu.Unlock()
	if c.alliance.v == nil {
		c.alliance.v = &model.Alliance{}
	}
	fn(c.alliance.v)
}
