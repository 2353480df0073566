package model

// Army mirrors one standing troop formation.
type Army struct {
	Meta

	ID     int64            `json:"id"`
	HeroID int64            `json:"heroId"`
	CityID int64            `json:"cityId"`
	Status int              `json:"status"` // 0 garrisoned, 1 marching, 2 defending
	Troops map[string]int64 `json:"troops"`
}

// NewArmy creates an empty army shell for the given id.
func NewArmy(id int64) *Army {
	return &Army{ID: id, Troops: make(map[string]int64)}
}

// Clone returns a deep copy of the army.
func (a *Army) Clone() *Army {
	out := *a
	out.Troops = make(map[string]int64, len(a.Troops))
	for typ, n := range a.Troops {
		out.Troops[typ] = n
	}
	return &out
}
