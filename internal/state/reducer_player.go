package state

import (
	"time"

	"github.com/evoprobe/evoprobe/internal/amf"
	"github.com/evoprobe/evoprobe/internal/model"
)

// reducePlayer handles player.* responses; the player is a singleton.
func (e *Engine) reducePlayer(cols *collections, action string, payload amf.Value, isResponse bool, now time.Time) bool {
	if !isResponse {
		return false
	}

	switch action {
	case "player.getPlayerInfo", "player.playerInfo", "player.update":
		var old, cur *model.Player
		cols.withPlayer(func(p *model.Player) {
			old = p.Clone()
			if n, ok := fieldInt(payload, "playerId"); ok {
				p.ID = n
			}
			if name, ok := fieldString(payload, "name"); ok {
				p.Name = name
			}
			if n, ok := fieldInt(payload, "level"); ok {
				p.Level = int(n)
			}
			if n, ok := fieldInt(payload, "prestige"); ok {
				p.Prestige = n
			}
			if n, ok := fieldInt(payload, "honor"); ok {
				p.Honor = n
			}
			if n, ok := fieldInt(payload, "gems"); ok {
				p.Gems = n
			}
			if n, ok := fieldInt(payload, "allianceId"); ok {
				p.AllianceID = n
			}
			p.Touch(now)
			cur = p.Clone()
		})
		e.record(EventStateChanged, entityPlayer, cur.ID, old, cur, now)
		return true
	default:
		return false
	}
}
