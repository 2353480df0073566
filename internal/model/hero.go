package model

// Hero mirrors one commander. Attributes follow the server's naming:
// politics drives production, attack drives combat, intelligence drives
// research.
type Hero struct {
	Meta

	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Level        int    `json:"level"`
	Experience   int64  `json:"experience"`
	Politics     int    `json:"politics"`
	Attack       int    `json:"attack"`
	Intelligence int    `json:"intelligence"`
	Status       int    `json:"status"` // 0 idle, 1 working, 2 marching, 3 captured
	CityID       int64  `json:"cityId"`
}

// NewHero creates an empty hero shell for the given id.
func NewHero(id int64) *Hero {
	return &Hero{ID: id}
}

// Clone returns a copy of the hero.
func (h *Hero) Clone() *Hero {
	out := *h
	return &out
}
