package state

import (
	"time"

	"github.com/evoprobe/evoprobe/internal/amf"
	"github.com/evoprobe/evoprobe/internal/model"
)

// reduceArmy handles army.* responses.
func (e *Engine) reduceArmy(cols *collections, action string, payload amf.Value, isResponse bool, now time.Time) bool {
	if !isResponse {
		return false
	}

	switch action {
	case "army.getArmies", "army.armyList":
		armies, ok := fieldArray(payload, "armies")
		if !ok {
			return false
		}
		any := false
		for _, a := range armies {
			if e.applyArmyFields(cols, a, now, false) {
				any = true
			}
		}
		return any
	case "army.getArmyInfo", "army.armyInfo":
		return e.applyArmyFields(cols, payload, now, false)
	case "army.arrived":
		return e.applyArmyFields(cols, payload, now, true)
	default:
		return false
	}
}

func (e *Engine) applyArmyFields(cols *collections, payload amf.Value, now time.Time, arrived bool) bool {
	id, ok := fieldInt(payload, "armyId")
	if !ok {
		return false
	}

	ent := cols.armies.getOrCreate(id, model.NewArmy)
	var old, cur *model.Army
	ent.with(func(a *model.Army) {
		old = a.Clone()
		if n, ok := fieldInt(payload, "heroId"); ok {
			a.HeroID = n
		}
		if n, ok := firstInt(payload, "cityId", "castleId"); ok {
			a.CityID = n
		}
		if n, ok := fieldInt(payload, "status"); ok {
			a.Status = int(n)
		}
		if troops, ok := fieldObject(payload, "troops"); ok {
			mergeTroops(a.Troops, troops)
		}
		a.Touch(now)
		cur = a.Clone()
	})

	if arrived {
		e.record(EventArmyArrived, entityArmy, id, old, cur, now)
	} else {
		e.record(EventStateChanged, entityArmy, id, old, cur, now)
	}
	return true
}
