package model

// Resources are the five stockpile counters every city carries.
type Resources struct {
	Gold   int64 `json:"gold"`
	Food   int64 `json:"food"`
	Lumber int64 `json:"lumber"`
	Stone  int64 `json:"stone"`
	Iron   int64 `json:"iron"`
}

// Add returns the element-wise sum.
func (r Resources) Add(o Resources) Resources {
	return Resources{
		Gold:   r.Gold + o.Gold,
		Food:   r.Food + o.Food,
		Lumber: r.Lumber + o.Lumber,
		Stone:  r.Stone + o.Stone,
		Iron:   r.Iron + o.Iron,
	}
}

// Total returns the sum of all five counters.
func (r Resources) Total() int64 {
	return r.Gold + r.Food + r.Lumber + r.Stone + r.Iron
}

// ProductionRates are per-hour accrual rates reported by the server.
type ProductionRates struct {
	GoldPerHour   float64 `json:"goldPerHour"`
	FoodPerHour   float64 `json:"foodPerHour"`
	LumberPerHour float64 `json:"lumberPerHour"`
	StonePerHour  float64 `json:"stonePerHour"`
	IronPerHour   float64 `json:"ironPerHour"`
}

// Accrue projects r forward by elapsedHours at the given rates.
func (r Resources) Accrue(rates ProductionRates, elapsedHours float64) Resources {
	return Resources{
		Gold:   r.Gold + int64(rates.GoldPerHour*elapsedHours),
		Food:   r.Food + int64(rates.FoodPerHour*elapsedHours),
		Lumber: r.Lumber + int64(rates.LumberPerHour*elapsedHours),
		Stone:  r.Stone + int64(rates.StonePerHour*elapsedHours),
		Iron:   r.Iron + int64(rates.IronPerHour*elapsedHours),
	}
}
