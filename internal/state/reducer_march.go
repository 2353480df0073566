package state

import (
	"time"

	"github.com/evoprobe/evoprobe/internal/amf"
	"github.com/evoprobe/evoprobe/internal/model"
)

// reduceMarch handles march.* traffic in both directions: march lifecycle
// packets are server-pushed asynchronous events, not responses to our own
// requests, so the direction tag carries no authority signal here.
func (e *Engine) reduceMarch(cols *collections, action string, payload amf.Value, now time.Time) bool {
	switch action {
	case "march.startMarch", "march.marchStarted":
		return e.applyMarchFields(cols, payload, now, EventMarchStarted)
	case "march.update", "march.marchInfo":
		return e.applyMarchFields(cols, payload, now, EventStateChanged)
	case "march.arrived", "march.marchArrived":
		return e.markMarchArrived(cols, payload, now)
	case "march.recall":
		return e.recallMarch(cols, payload, now)
	case "march.attackWarning", "march.enemyMarch":
		id, ok := fieldInt(payload, "marchId")
		if !ok {
			return false
		}
		e.applyMarchFields(cols, payload, now, EventStateChanged)
		e.record(EventUnderAttack, entityMarch, id, nil, nil, now)
		return true
	default:
		return false
	}
}

func (e *Engine) applyMarchFields(cols *collections, payload amf.Value, now time.Time, ev EventType) bool {
	id, ok := fieldInt(payload, "marchId")
	if !ok {
		return false
	}

	ent := cols.marches.getOrCreate(id, model.NewMarch)
	var old, cur *model.March
	ent.with(func(m *model.March) {
		old = m.Clone()
		mergeMarchFields(m, payload, now)
		m.Touch(now)
		cur = m.Clone()
	})
	e.record(ev, entityMarch, id, old, cur, now)
	return true
}

func (e *Engine) markMarchArrived(cols *collections, payload amf.Value, now time.Time) bool {
	id, ok := fieldInt(payload, "marchId")
	if !ok {
		return false
	}

	ent := cols.marches.getOrCreate(id, model.NewMarch)
	var old, cur *model.March
	ent.with(func(m *model.March) {
		old = m.Clone()
		mergeMarchFields(m, payload, now)
		m.Status = model.MarchStatusArrived
		m.TimeRemaining = 0
		// The server can push arrival early; clamp the schedule so the
		// recompute pass does not resurrect the countdown.
		if m.ArrivalTime.IsZero() || m.ArrivalTime.After(now) {
			m.ArrivalTime = now
		}
		if m.ArrivedAt.IsZero() {
			m.ArrivedAt = now
		}
		m.Touch(now)
		cur = m.Clone()
	})
	e.record(EventMarchArrived, entityMarch, id, old, cur, now)
	return true
}

func (e *Engine) recallMarch(cols *collections, payload amf.Value, now time.Time) bool {
	id, ok := fieldInt(payload, "marchId")
	if !ok {
		return false
	}

	ent, ok := cols.marches.get(id)
	if !ok {
		return false
	}
	var old, cur *model.March
	ent.with(func(m *model.March) {
		old = m.Clone()
		m.Status = model.MarchStatusReturning
		m.ArrivedAt = time.Time{}
		m.Touch(now)
		cur = m.Clone()
	})
	e.record(EventStateChanged, entityMarch, id, old, cur, now)
	return true
}

// mergeMarchFields writes only the fields the payload carries. Arrival time
// travels as epoch seconds.
func mergeMarchFields(m *model.March, payload amf.Value, now time.Time) {
	if n, ok := firstInt(payload, "originCityId", "cityId"); ok {
		m.OriginCityID = n
	}
	if n, ok := fieldInt(payload, "targetX"); ok {
		m.TargetX = int(n)
	}
	if n, ok := fieldInt(payload, "targetY"); ok {
		m.TargetY = int(n)
	}
	if s, ok := fieldString(payload, "status"); ok {
		m.Status = s
	}
	if n, ok := fieldInt(payload, "heroId"); ok {
		m.HeroID = n
	}
	if troops, ok := fieldObject(payload, "troops"); ok {
		mergeTroops(m.Troops, troops)
	}
	if n, ok := fieldInt(payload, "departTime"); ok {
		m.DepartTime = time.Unix(n, 0)
	}
	if n, ok := fieldInt(payload, "arrivalTime"); ok {
		m.ArrivalTime = time.Unix(n, 0)
		m.TimeRemaining = max(0, m.ArrivalTime.Sub(now))
	}
}
