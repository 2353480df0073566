package state

import (
	"encoding/json"
	"time"

	"github.com/evoprobe/evoprobe/internal/model"
)

// Snapshot is a deep copy of the full entity graph: it shares no mutable
// state with the live graph and is safe to hand to external tooling.
type Snapshot struct {
	TakenAt  time.Time              `json:"takenAt"`
	Player   *model.Player          `json:"player,omitempty"`
	Alliance *model.Alliance        `json:"alliance,omitempty"`
	Cities   map[int64]*model.City  `json:"cities"`
	Heroes   map[int64]*model.Hero  `json:"heroes"`
	Armies   map[int64]*model.Army  `json:"armies"`
	Marches  map[int64]*model.March `json:"marches"`
}

// JSON renders the snapshot for the export surface.
func (s *Snapshot) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// GetSnapshot deep-copies the current entity graph.
func (e *Engine) GetSnapshot() *Snapshot {
	cols := e.cols.Load()
	snap := &Snapshot{
		TakenAt: e.clk.Now(),
		Cities:  make(map[int64]*model.City),
		Heroes:  make(map[int64]*model.Hero),
		Armies:  make(map[int64]*model.Army),
		Marches: make(map[int64]*model.March),
	}

	cols.player.mu.Lock()
	if cols.player.v != nil {
		snap.Player = cols.player.v.Clone()
	}
	cols.player.mu.Unlock()

	cols.alliance.mu.Lock()
	if cols.alliance.v != nil {
		snap.Alliance = cols.alliance.v.Clone()
	}
	cols.alliance.mu.Unlock()

	cols.cities.rangeAll(func(id int64, ent *entry[*model.City]) bool {
		ent.with(func(c *model.City) { snap.Cities[id] = c.Clone() })
		return true
	})
	cols.heroes.rangeAll(func(id int64, ent *entry[*model.Hero]) bool {
		ent.with(func(h *model.Hero) { snap.Heroes[id] = h.Clone() })
		return true
	})
	cols.armies.rangeAll(func(id int64, ent *entry[*model.Army]) bool {
		ent.with(func(a *model.Army) { snap.Armies[id] = a.Clone() })
		return true
	})
	cols.marches.rangeAll(func(id int64, ent *entry[*model.March]) bool {
		ent.with(func(m *model.March) { snap.Marches[id] = m.Clone() })
		return true
	})
	return snap
}

// GetCity returns a copy of one city, or nil if unknown.
func (e *Engine) GetCity(id int64) *model.City {
	ent, ok := e.cols.Load().cities.get(id)
	if !ok {
		return nil
	}
	var out *model.City
	ent.with(func(c *model.City) { out = c.Clone() })
	return out
}

// GetHero returns a copy of one hero, or nil if unknown.
func (e *Engine) GetHero(id int64) *model.Hero {
	ent, ok := e.cols.Load().heroes.get(id)
	if !ok {
		return nil
	}
	var out *model.Hero
	ent.with(func(h *model.Hero) { out = h.Clone() })
	return out
}

// GetMarch returns a copy of one march, or nil if unknown.
func (e *Engine) GetMarch(id int64) *model.March {
	ent, ok := e.cols.Load().marches.get(id)
	if !ok {
		return nil
	}
	var out *model.March
	ent.with(func(m *model.March) { out = m.Clone() })
	return out
}

// CityCount returns the number of tracked cities.
func (e *Engine) CityCount() int { return e.cols.Load().cities.size() }

// MarchCount returns the number of tracked marches.
func (e *Engine) MarchCount() int { return e.cols.Load().marches.size() }

// GetTotalResources sums stockpiles across all cities.
func (e *Engine) GetTotalResources() model.Resources {
	var total model.Resources
	e.cols.Load().cities.rangeAll(func(_ int64, ent *entry[*model.City]) bool {
		ent.with(func(c *model.City) { total = total.Add(c.Resources) })
		return true
	})
	return total
}

// GetTotalTroops sums troop counts by type across cities and armies.
func (e *Engine) GetTotalTroops() map[string]int64 {
	total := make(map[string]int64)
	cols := e.cols.Load()
	cols.cities.rangeAll(func(_ int64, ent *entry[*model.City]) bool {
		ent.with(func(c *model.City) {
			for typ, n := range c.Troops {
				total[typ] += n
			}
		})
		return true
	})
	cols.armies.rangeAll(func(_ int64, ent *entry[*model.Army]) bool {
		ent.with(func(a *model.Army) {
			for typ, n := range a.Troops {
				total[typ] += n
			}
		})
		return true
	})
	return total
}
