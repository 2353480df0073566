package fuzz

import (
	"sync"
	"time"

	"github.com/evoprobe/evoprobe/internal/amf"
)

// Discovery is a fuzz-confirmed, previously-uncataloged action that produced
// a valid-looking response.
type Discovery struct {
	ActionName     string         `json:"actionName"`
	Parameters     map[string]any `json:"parameters"`
	Classification Classification `json:"classification"`
	DiscoveredAt   time.Time      `json:"discoveredAt"`
	SampleResponse []byte         `json:"sampleResponse"`
}

// discoveries is an append-only set keyed by action name; the first
// successful hit on a name wins, later hits are no-ops.
type discoveries struct {
	mu     sync.Mutex
	byName map[string]*Discovery
	order  []string
}

func newDiscoveries() *discoveries {
	return &discoveries{byName: make(map[string]*Discovery)}
}

// add inserts d unless its action name is already present. Reports whether
// the insert happened.
func (s *discoveries) add(action string, params amf.Value, cls Classification, at time.Time, sample []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byName[action]; dup {
		return false
	}
	paramsCopy, _ := params.Interface().(map[string]any)
	sampleCopy := append([]byte(nil), sample...)
	s.byName[action] = &Discovery{
		ActionName:     action,
		Parameters:     paramsCopy,
		Classification: cls,
		DiscoveredAt:   at,
		SampleResponse: sampleCopy,
	}
	s.order = append(s.order, action)
	return true
}

// list returns discoveries in insertion order.
func (s *discoveries) list() []*Discovery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Discovery, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}
