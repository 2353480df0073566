// Package catalog is the ground truth of known protocol actions: a mapping
// from dotted action names to observed metadata. The state engine records
// confirmed observations into it; the exploration engine consults it to tell
// known actions from discoveries. Speculative fuzz attempts never mutate it.
package catalog

import (
	"sort"
	"sync"
	"time"
)

// Direction tags which side of the protocol an action was observed on.
type Direction string

const (
	DirectionRequest  Direction = "request"
	DirectionResponse Direction = "response"
)

// Descriptor is one catalog entry. ObservedCount and the seen timestamps are
// mutated only by confirmed traffic observations.
type Descriptor struct {
	Name            string    `json:"name"`
	KnownParameters []string  `json:"knownParameters"`
	Direction       Direction `json:"direction"`
	ResponseShape   string    `json:"responseShape,omitempty"`
	ObservedCount   int64     `json:"observedCount"`
	FirstSeen       time.Time `json:"firstSeen"`
	LastSeen        time.Time `json:"lastSeen"`
}

// Clone returns a copy of the descriptor with its own parameter slice.
func (d *Descriptor) Clone() *Descriptor {
	out := *d
	out.KnownParameters = append([]string(nil), d.KnownParameters...)
	return &out
}

// Store is the catalog lookup surface the engines depend on. The in-memory
// implementation below backs unit use; internal/db provides a persistent one.
type Store interface {
	// Get returns the descriptor for name, or nil if unknown.
	Get(name string) *Descriptor
	// RecordObservation upserts a confirmed observation of name: creates
	// the descriptor on first sight, bumps counters, merges new parameter
	// names into KnownParameters.
	RecordObservation(name string, dir Direction, params []string, at time.Time)
	// Names returns all known action names, sorted.
	Names() []string
	// All returns copies of every descriptor, ordered by name.
	All() []*Descriptor
}

// Memory is a mutex-guarded in-memory Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*Descriptor
}

// NewMemory returns an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*Descriptor)}
}

// Get returns a copy of the descriptor for name, or nil if unknown.
func (m *Memory) Get(name string) *Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.entries[name]
	if !ok {
		return nil
	}
	return d.Clone()
}

// RecordObservation upserts a confirmed observation.
func (m *Memory) RecordObservation(name string, dir Direction, params []string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.entries[name]
	if !ok {
		d = &Descriptor{
			Name:      name,
			Direction: dir,
			FirstSeen: at,
		}
		m.entries[name] = d
	}
	d.ObservedCount++
	d.LastSeen = at
	mergeParams(d, params)
}

func mergeParams(d *Descriptor, params []string) {
	for _, p := range params {
		known := false
		for _, k := range d.KnownParameters {
			if k == p {
				known = true
				break
			}
		}
		if !known {
			d.KnownParameters = append(d.KnownParameters, p)
		}
	}
	sort.Strings(d.KnownParameters)
}

// Names returns all known action names, sorted.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns copies of every descriptor, ordered by name. Used to persist
// the catalog at shutdown.
func (m *Memory) All() []*Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Descriptor, 0, len(names))
	for _, name := range names {
		out = append(out, m.entries[name].Clone())
	}
	return out
}

// Seed bulk-loads descriptors, replacing entries with the same name.
// Used to restore a persisted catalog at startup.
func (m *Memory) Seed(descriptors []*Descriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range descriptors {
		m.entries[d.Name] = d.Clone()
	}
}

// Defaults returns the baseline catalog: actions confirmed in enough captures
// to treat as known. A fuzz hit on any of these is not a discovery.
func Defaults() []*Descriptor {
	baseline := []struct {
		name   string
		dir    Direction
		params []string
	}{
		{"castle.getCastleInfo", DirectionRequest, []string{"cityId"}},
		{"castle.getResources", DirectionRequest, []string{"cityId"}},
		{"castle.upgradeBuilding", DirectionRequest, []string{"cityId", "positionId"}},
		{"hero.getHeroList", DirectionRequest, []string{"cityId"}},
		{"hero.levelUp", DirectionRequest, []string{"heroId"}},
		{"troop.produce", DirectionRequest, []string{"cityId", "typeId", "amount"}},
		{"army.getArmies", DirectionRequest, nil},
		{"march.startMarch", DirectionRequest, []string{"marchId", "targetX", "targetY"}},
		{"march.recall", DirectionRequest, []string{"marchId"}},
		{"player.getPlayerInfo", DirectionRequest, nil},
		{"alliance.getAllianceInfo", DirectionRequest, nil},
	}

	out := make([]*Descriptor, 0, len(baseline))
	for _, b := range baseline {
		out = append(out, &Descriptor{
			Name:            b.name,
			KnownParameters: append([]string(nil), b.params...),
			Direction:       b.dir,
		})
	}
	return out
}
