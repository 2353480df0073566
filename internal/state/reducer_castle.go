package state

import (
	"time"

	"github.com/evoprobe/evoprobe/internal/amf"
	"github.com/evoprobe/evoprobe/internal/model"
)

// cityAspects records which parts of a city a payload actually carried, so
// the right narrow events fire.
type cityAspects struct {
	resources bool
	rates     bool
	buildings bool
	troops    bool
}

// reduceCastle handles castle.* traffic. Responses carry authoritative city
// state; the under-attack warning is server-pushed and accepted in both
// directions.
func (e *Engine) reduceCastle(cols *collections, action string, payload amf.Value, isResponse bool, now time.Time) bool {
	if action == "castle.underAttack" {
		id, ok := firstInt(payload, "cityId", "castleId")
		if !ok {
			return false
		}
		ent := cols.cities.getOrCreate(id, model.NewCity)
		ent.with(func(c *model.City) { c.Touch(now) })
		e.record(EventUnderAttack, entityCity, id, nil, nil, now)
		return true
	}

	if !isResponse {
		return false
	}

	switch action {
	case "castle.getCastleInfo", "castle.castleInfo":
		return e.applyCityPacket(cols, payload, now)
	case "castle.getResources", "castle.resourceUpdate":
		return e.applyCityPacket(cols, payload, now)
	case "castle.upgradeBuilding", "castle.buildingComplete":
		return e.applyBuildingPacket(cols, payload, now)
	default:
		return false
	}
}

// applyCityPacket merges a city-shaped payload into the graph. Fields absent
// from the payload never clobber existing values.
func (e *Engine) applyCityPacket(cols *collections, payload amf.Value, now time.Time) bool {
	id, ok := firstInt(payload, "cityId", "castleId")
	if !ok {
		return false
	}

	ent := cols.cities.getOrCreate(id, model.NewCity)
	var old, cur *model.City
	var aspects cityAspects
	ent.with(func(c *model.City) {
		old = c.Clone()
		aspects = mergeCityFields(c, payload)
		c.Touch(now)
		cur = c.Clone()
	})

	switch {
	case aspects.resources || aspects.rates:
		e.record(EventResourcesUpdated, entityCity, id, old, cur, now)
	case aspects.buildings:
		e.record(EventBuildingUpdated, entityCity, id, old, cur, now)
	case aspects.troops:
		e.record(EventTroopsUpdated, entityCity, id, old, cur, now)
	default:
		e.record(EventStateChanged, entityCity, id, old, cur, now)
	}
	return true
}

// applyBuildingPacket merges a single building slot update.
func (e *Engine) applyBuildingPacket(cols *collections, payload amf.Value, now time.Time) bool {
	id, ok := firstInt(payload, "cityId", "castleId")
	if !ok {
		return false
	}
	pos, ok := fieldInt(payload, "positionId")
	if !ok {
		return false
	}

	ent := cols.cities.getOrCreate(id, model.NewCity)
	var old, cur *model.City
	ent.with(func(c *model.City) {
		old = c.Clone()
		mergeBuilding(c, int(pos), payload)
		c.Touch(now)
		cur = c.Clone()
	})
	e.record(EventBuildingUpdated, entityCity, id, old, cur, now)
	return true
}

func mergeCityFields(c *model.City, payload amf.Value) cityAspects {
	var aspects cityAspects

	if name, ok := fieldString(payload, "name"); ok {
		c.Name = name
	}
	if x, ok := fieldInt(payload, "x"); ok {
		c.X = int(x)
	}
	if y, ok := fieldInt(payload, "y"); ok {
		c.Y = int(y)
	}

	if res, ok := fieldObject(payload, "resources"); ok {
		if mergeResources(&c.Resources, res) {
			aspects.resources = true
		}
	}
	if rates, ok := fieldObject(payload, "rates"); ok {
		if mergeRates(&c.Rates, rates) {
			aspects.rates = true
		}
	}
	if buildings, ok := fieldArray(payload, "buildings"); ok {
		for _, b := range buildings {
			if pos, ok := fieldInt(b, "positionId"); ok {
				mergeBuilding(c, int(pos), b)
				aspects.buildings = true
			}
		}
	}
	if troops, ok := fieldObject(payload, "troops"); ok {
		if mergeTroops(c.Troops, troops) {
			aspects.troops = true
		}
	}
	return aspects
}

func mergeResources(r *model.Resources, v amf.Value) bool {
	present := false
	if n, ok := fieldInt(v, "gold"); ok {
		r.Gold = n
		present = true
	}
	if n, ok := fieldInt(v, "food"); ok {
		r.Food = n
		present = true
	}
	if n, ok := fieldInt(v, "lumber"); ok {
		r.Lumber = n
		present = true
	}
	if n, ok := fieldInt(v, "stone"); ok {
		r.Stone = n
		present = true
	}
	if n, ok := fieldInt(v, "iron"); ok {
		r.Iron = n
		present = true
	}
	return present
}

func mergeRates(r *model.ProductionRates, v amf.Value) bool {
	present := false
	if f, ok := fieldFloat(v, "gold"); ok {
		r.GoldPerHour = f
		present = true
	}
	if f, ok := fieldFloat(v, "food"); ok {
		r.FoodPerHour = f
		present = true
	}
	if f, ok := fieldFloat(v, "lumber"); ok {
		r.LumberPerHour = f
		present = true
	}
	if f, ok := fieldFloat(v, "stone"); ok {
		r.StonePerHour = f
		present = true
	}
	if f, ok := fieldFloat(v, "iron"); ok {
		r.IronPerHour = f
		present = true
	}
	return present
}

func mergeBuilding(c *model.City, pos int, v amf.Value) {
	b, ok := c.Buildings[pos]
	if !ok {
		b = &model.Building{PositionID: pos}
		c.Buildings[pos] = b
	}
	if n, ok := fieldInt(v, "typeId"); ok {
		b.TypeID = int(n)
	}
	if n, ok := fieldInt(v, "level"); ok {
		b.Level = int(n)
	}
	if n, ok := fieldInt(v, "status"); ok {
		b.Status = int(n)
	}
	if n, ok := fieldInt(v, "completeAt"); ok {
		b.CompleteAt = n
	}
}

func mergeTroops(dst map[string]int64, v amf.Value) bool {
	present := false
	for _, typ := range v.Keys() {
		p, _ := v.Get(typ)
		if n, ok := p.IntValue(); ok {
			dst[typ] = n
			present = true
		}
	}
	return present
}
