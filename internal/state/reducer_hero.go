package state

import (
	"time"

	"github.com/evoprobe/evoprobe/internal/amf"
	"github.com/evoprobe/evoprobe/internal/model"
)

// reduceHero handles hero.* responses.
func (e *Engine) reduceHero(cols *collections, action string, payload amf.Value, isResponse bool, now time.Time) bool {
	if !isResponse {
		return false
	}

	switch action {
	case "hero.getHeroList", "hero.heroList":
		heroes, ok := fieldArray(payload, "heroes")
		if !ok {
			return false
		}
		any := false
		for _, h := range heroes {
			if e.applyHeroFields(cols, h, now) {
				any = true
			}
		}
		return any
	case "hero.getHeroInfo", "hero.heroInfo", "hero.info", "hero.levelUp":
		return e.applyHeroFields(cols, payload, now)
	default:
		return false
	}
}

func (e *Engine) applyHeroFields(cols *collections, payload amf.Value, now time.Time) bool {
	id, ok := fieldInt(payload, "heroId")
	if !ok {
		return false
	}

	ent := cols.heroes.getOrCreate(id, model.NewHero)
	var old, cur *model.Hero
	ent.with(func(h *model.Hero) {
		old = h.Clone()
		if name, ok := fieldString(payload, "name"); ok {
			h.Name = name
		}
		if n, ok := fieldInt(payload, "level"); ok {
			h.Level = int(n)
		}
		if n, ok := fieldInt(payload, "experience"); ok {
			h.Experience = n
		}
		if n, ok := fieldInt(payload, "politics"); ok {
			h.Politics = int(n)
		}
		if n, ok := fieldInt(payload, "attack"); ok {
			h.Attack = int(n)
		}
		if n, ok := fieldInt(payload, "intelligence"); ok {
			h.Intelligence = int(n)
		}
		if n, ok := fieldInt(payload, "status"); ok {
			h.Status = int(n)
		}
		if n, ok := fieldInt(payload, "cityId"); ok {
			h.CityID = n
		}
		h.Touch(now)
		cur = h.Clone()
	})

	if old.Level > 0 && cur.Level > old.Level {
		e.record(EventHeroLeveledUp, entityHero, id, old, cur, now)
	} else {
		e.record(EventStateChanged, entityHero, id, old, cur, now)
	}
	return true
}
