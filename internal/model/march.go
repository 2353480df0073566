package model

import "time"

// March status values observed on the wire.
const (
	MarchStatusMarching  = "marching"
	MarchStatusArrived   = "arrived"
	MarchStatusReturning = "returning"
)

// March mirrors one troop movement. TimeRemaining is recomputed every tick
// from ArrivalTime; an arrived march becomes removable only after a grace
// delay so late packets referencing it still resolve.
type March struct {
	Meta

	ID           int64            `json:"id"`
	OriginCityID int64            `json:"originCityId"`
	TargetX      int              `json:"targetX"`
	TargetY      int              `json:"targetY"`
	Status       string           `json:"status"`
	HeroID       int64            `json:"heroId"`
	Troops       map[string]int64 `json:"troops"`

	DepartTime    time.Time     `json:"departTime"`
	ArrivalTime   time.Time     `json:"arrivalTime"`
	TimeRemaining time.Duration `json:"timeRemaining"`

	// ArrivedAt records when the recompute pass first saw the march both
	// arrived and expired; zero until then.
	ArrivedAt time.Time `json:"arrivedAt,omitempty"`
}

// NewMarch creates an empty march shell for the given id.
func NewMarch(id int64) *March {
	return &March{ID: id, Status: MarchStatusMarching, Troops: make(map[string]int64)}
}

// Removable reports whether the march has been arrived-and-expired for
// longer than grace.
func (m *March) Removable(now time.Time, grace time.Duration) bool {
	if m.Status != MarchStatusArrived || m.TimeRemaining != 0 || m.ArrivedAt.IsZero() {
		return false
	}
	return now.Sub(m.ArrivedAt) >= grace
}

// Clone returns a deep copy of the march.
func (m *March) Clone() *March {
	out := *m
	out.Troops = make(map[string]int64, len(m.Troops))
	for typ, n := range m.Troops {
		out.Troops[typ] = n
	}
	return &out
}
