package model

// Building is one construction slot inside a city, keyed by position.
type Building struct {
	PositionID int   `json:"positionId"`
	TypeID     int   `json:"typeId"`
	Level      int   `json:"level"`
	Status     int   `json:"status"` // 0 idle, 1 upgrading, 2 demolishing
	CompleteAt int64 `json:"completeAt,omitempty"`
}

// City mirrors one player castle. Projected is derived by the recompute
// pass and never written by reducers.
type City struct {
	Meta

	ID   int64  `json:"id"`
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`

	Resources Resources       `json:"resources"`
	Rates     ProductionRates `json:"rates"`
	Projected Resources       `json:"projected"`

	Buildings map[int]*Building `json:"buildings"`
	Troops    map[string]int64  `json:"troops"`
}

// NewCity creates an empty city shell for the given id.
func NewCity(id int64) *City {
	return &City{
		ID:        id,
		Buildings: make(map[int]*Building),
		Troops:    make(map[string]int64),
	}
}

// Clone returns a deep copy sharing no mutable state with the receiver.
func (c *City) Clone() *City {
	out := *c
	out.Buildings = make(map[int]*Building, len(c.Buildings))
	for pos, b := range c.Buildings {
		cp := *b
		out.Buildings[pos] = &cp
	}
	out.Troops = make(map[string]int64, len(c.Troops))
	for typ, n := range c.Troops {
		out.Troops[typ] = n
	}
	return &out
}
