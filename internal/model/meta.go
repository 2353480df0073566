// Package model holds the reconstructed game entities: the mirror of
// server-authoritative state rebuilt from decoded traffic. Entities carry no
// behavior beyond copying and freshness; all mutation goes through the state
// engine's reducers.
package model

import "time"

// Meta is embedded in every entity. LastUpdated advances on every reducer
// write; staleness is explicit, never hidden.
type Meta struct {
	LastUpdated time.Time `json:"lastUpdated"`
}

// Fresh reports whether the entity was updated within the staleness window.
func (m Meta) Fresh(now time.Time, window time.Duration) bool {
	return now.Sub(m.LastUpdated) < window
}

// Touch advances LastUpdated.
func (m *Meta) Touch(now time.Time) {
	m.LastUpdated = now
}
