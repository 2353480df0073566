package model

// Player mirrors the authenticated account. Singleton in the entity graph.
type Player struct {
	Meta

	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	Prestige   int64  `json:"prestige"`
	Honor      int64  `json:"honor"`
	Gems       int64  `json:"gems"`
	AllianceID int64  `json:"allianceId"`
}

// Clone returns a copy of the player.
func (p *Player) Clone() *Player {
	out := *p
	return &out
}
