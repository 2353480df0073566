package model

// Alliance mirrors the player's alliance. Singleton in the entity graph.
type Alliance struct {
	Meta

	ID          int64  `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
	Rank        int    `json:"rank"`
	LeaderName  string `json:"leaderName"`
}

// Clone returns a copy of the alliance.
func (a *Alliance) Clone() *Alliance {
	out := *a
	return &out
}
