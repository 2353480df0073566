package state

import (
	"time"

	"github.com/evoprobe/evoprobe/internal/amf"
	"github.com/evoprobe/evoprobe/internal/model"
)

// reduceAlliance handles alliance.* responses; the alliance is a singleton.
func (e *Engine) reduceAlliance(cols *collections, action string, payload amf.Value, isResponse bool, now time.Time) bool {
	if !isResponse {
		return false
	}

	switch action {
	case "alliance.getAllianceInfo", "alliance.allianceInfo", "alliance.info":
		var old, cur *model.Alliance
		cols.withAlliance(func(a *model.Alliance) {
			old = a.Clone()
			if n, ok := fieldInt(payload, "allianceId"); ok {
				a.ID = n
			}
			if name, ok := fieldString(payload, "name"); ok {
				a.Name = name
			}
			if n, ok := fieldInt(payload, "memberCount"); ok {
				a.MemberCount = int(n)
			}
			if n, ok := fieldInt(payload, "rank"); ok {
				a.Rank = int(n)
			}
			if name, ok := fieldString(payload, "leaderName"); ok {
				a.LeaderName = name
			}
			a.Touch(now)
			cur = a.Clone()
		})
		e.record(EventStateChanged, entityAlliance, cur.ID, old, cur, now)
		return true
	default:
		return false
	}
}
