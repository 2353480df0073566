package state

import (
	"time"

	"github.com/evoprobe/evoprobe/internal/amf"
	"github.com/evoprobe/evoprobe/internal/model"
)

// reduceTroop handles troop.* responses: production reports and garrison
// counts, merged into the owning city.
func (e *Engine) reduceTroop(cols *collections, action string, payload amf.Value, isResponse bool, now time.Time) bool {
	if !isResponse {
		return false
	}

	switch action {
	case "troop.produce", "troop.update", "troop.getTroops":
		id, ok := firstInt(payload, "cityId", "castleId")
		if !ok {
			return false
		}
		troops, ok := fieldObject(payload, "troops")
		if !ok {
			return false
		}

		ent := cols.cities.getOrCreate(id, model.NewCity)
		var old, cur *model.City
		merged := false
		ent.with(func(c *model.City) {
			old = c.Clone()
			merged = mergeTroops(c.Troops, troops)
			c.Touch(now)
			cur = c.Clone()
		})
		if !merged {
			return false
		}
		e.record(EventTroopsUpdated, entityCity, id, old, cur, now)
		return true
	default:
		return false
	}
}
