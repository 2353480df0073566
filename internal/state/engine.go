// Package state reconstructs server-authoritative game state from decoded
// protocol traffic. Packets are routed by action-name category to reducers
// that merge incoming fields into a concurrent entity graph; every change
// raises typed notifications and lands in a bounded event history. A
// periodic recompute pass advances time-derived projections between polls.
package state

import (
	"log/slog"
	"strings"
	"time"

	"github.com/evoprobe/evoprobe/internal/amf"
	"github.com/evoprobe/evoprobe/internal/catalog"
	"github.com/evoprobe/evoprobe/internal/clock"
)

// Entity type labels used in events, history and snapshots.
const (
	entityPlayer   = "player"
	entityAlliance = "alliance"
	entityCity     = "city"
	entityHero     = "hero"
	entityArmy     = "army"
	entityMarch    = "march"
)

// Options tune the engine. Zero values fall back to the defaults below.
type Options struct {
	// HistoryCapacity bounds the event log (default 1000).
	HistoryCapacity int
	// FreshnessWindow is the maximum entity age before it counts as stale
	// (default 5 minutes).
	FreshnessWindow time.Duration
	// MarchGrace delays removal of arrived marches (default 30 seconds).
	MarchGrace time.Duration
}

const (
	defaultHistoryCapacity = 1000
	defaultFreshnessWindow = 5 * time.Minute
	defaultMarchGrace      = 30 * time.Second
)

// Engine owns the entity graph. All dependencies are injected; there is no
// package-level state.
type Engine struct {
	cols    atomicCollections
	catalog catalog.Store
	clk     clock.Clock
	hub     *hub
	history *history
	window  time.Duration
	grace   time.Duration
}

// New creates an engine recording confirmed observations into cat and
// reading time from clk.
func New(cat catalog.Store, clk clock.Clock, opts Options) *Engine {
	if opts.HistoryCapacity <= 0 {
		opts.HistoryCapacity = defaultHistoryCapacity
	}
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = defaultFreshnessWindow
	}
	if opts.MarchGrace <= 0 {
		opts.MarchGrace = defaultMarchGrace
	}
	e := &Engine{
		catalog: cat,
		clk:     clk,
		hub:     newHub(),
		history: newHistory(opts.HistoryCapacity),
		window:  opts.FreshnessWindow,
		grace:   opts.MarchGrace,
	}
	e.cols.Store(newCollections())
	return e
}

// Subscribe registers an observer for change notifications and returns an
// unsubscribe function. A panicking observer does not affect the others.
func (e *Engine) Subscribe(fn Observer) func() {
	return e.hub.subscribe(fn)
}

// FreshnessWindow returns the configured staleness bound.
func (e *Engine) FreshnessWindow() time.Duration {
	return e.window
}

// ProcessPacket routes one decoded payload to its category reducer.
// The first dot-separated segment of the action name selects the category;
// unknown categories and unknown actions within a category are silently
// ignored. Most reducers only trust responses (the server is authoritative);
// march traffic and under-attack warnings are server-pushed and processed in
// both directions. A reducer panic is contained to the offending packet.
func (e *Engine) ProcessPacket(actionName string, payload amf.Value, isResponse bool) {
	category, _, ok := strings.Cut(actionName, ".")
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("reducer panicked", "action", actionName, "panic", r)
		}
	}()

	cols := e.cols.Load()
	now := e.clk.Now()

	var handled bool
	switch category {
	case "castle":
		handled = e.reduceCastle(cols, actionName, payload, isResponse, now)
	case "hero":
		handled = e.reduceHero(cols, actionName, payload, isResponse, now)
	case "troop":
		handled = e.reduceTroop(cols, actionName, payload, isResponse, now)
	case "army":
		handled = e.reduceArmy(cols, actionName, payload, isResponse, now)
	case "march":
		handled = e.reduceMarch(cols, actionName, payload, now)
	case "alliance":
		handled = e.reduceAlliance(cols, actionName, payload, isResponse, now)
	case "player":
		handled = e.reducePlayer(cols, actionName, payload, isResponse, now)
	default:
		return
	}

	if handled && e.catalog != nil {
		dir := catalog.DirectionRequest
		if isResponse {
			dir = catalog.DirectionResponse
		}
		e.catalog.RecordObservation(actionName, dir, payload.Keys(), now)
	}
}

// ClearState atomically swaps in an empty entity graph and clears history.
// Concurrent reducers or recompute passes finish against the old graph;
// nothing observes a half-cleared one.
func (e *Engine) ClearState() {
	e.cols.Store(newCollections())
	e.history.clear()
	e.hub.publish(Event{Type: EventStateCleared, At: e.clk.Now()})
}

// GetHistory returns a copy of the bounded event log, oldest first.
func (e *Engine) GetHistory() []Change {
	return e.history.list()
}

func (e *Engine) record(ev EventType, entityType string, id int64, old, new any, at time.Time) {
	e.history.append(Change{
		At:         at,
		EntityType: entityType,
		EntityID:   id,
		EventType:  ev,
		Old:        old,
		New:        new,
	})
	e.hub.publish(Event{Type: ev, EntityType: entityType, EntityID: id, At: at})
}

// Payload field accessors. Reducers must only write fields the payload
// actually carries, so every read reports presence.

func fieldInt(v amf.Value, key string) (int64, bool) {
	p, ok := v.Get(key)
	if !ok {
		return 0, false
	}
	return p.IntValue()
}

func fieldFloat(v amf.Value, key string) (float64, bool) {
	p, ok := v.Get(key)
	if !ok {
		return 0, false
	}
	return p.FloatValue()
}

func fieldString(v amf.Value, key string) (string, bool) {
	p, ok := v.Get(key)
	if !ok || p.Kind() != amf.KindString {
		return "", false
	}
	return p.StringValue(), true
}

func fieldObject(v amf.Value, key string) (amf.Value, bool) {
	p, ok := v.Get(key)
	if !ok || p.Kind() != amf.KindObject {
		return amf.Value{}, false
	}
	return p, true
}

func fieldArray(v amf.Value, key string) ([]amf.Value, bool) {
	p, ok := v.Get(key)
	if !ok || p.Kind() != amf.KindArray {
		return nil, false
	}
	return p.Elems(), true
}

// firstInt returns the first present key, letting reducers accept the
// server's inconsistent id field naming (cityId vs castleId).
func firstInt(v amf.Value, keys ...string) (int64, bool) {
	for _, key := range keys {
		if n, ok := fieldInt(v, key); ok {
			return n, true
		}
	}
	return 0, false
}
