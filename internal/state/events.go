package state

import (
	"log/slog"
	"sync"
	"time"
)

// EventType names a state change notification.
type EventType string

const (
	// EventStateChanged is the broad notification raised alongside every
	// narrower event below.
	EventStateChanged EventType = "StateChanged"

	EventResourcesUpdated EventType = "ResourcesUpdated"
	EventBuildingUpdated  EventType = "BuildingUpdated"
	EventTroopsUpdated    EventType = "TroopsUpdated"
	EventHeroLeveledUp    EventType = "HeroLeveledUp"
	EventArmyArrived      EventType = "ArmyArrived"
	EventMarchStarted     EventType = "MarchStarted"
	EventMarchArrived     EventType = "MarchArrived"
	EventUnderAttack      EventType = "UnderAttack"
	EventStateCleared     EventType = "StateCleared"
)

// Event is one typed change notification.
type Event struct {
	Type       EventType
	EntityType string
	EntityID   int64
	At         time.Time
}

// Observer receives events. Observers run synchronously on the mutating
// goroutine; slow observers should hand off to their own channel.
type Observer func(Event)

// hub fans events out to subscribers. A panicking observer is isolated: it
// neither stops delivery to the others nor corrupts engine state.
type hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]Observer
}

func newHub() *hub {
	return &hub{subs: make(map[int]Observer)}
}

// subscribe registers fn and returns an unsubscribe function.
func (h *hub) subscribe(fn Observer) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// publish delivers ev to every subscriber, then a StateChanged echo unless
// ev already is one.
func (h *hub) publish(ev Event) {
	h.deliver(ev)
	if ev.Type != EventStateChanged {
		echo := ev
		echo.Type = EventStateChanged
		h.deliver(echo)
	}
}

func (h *hub) deliver(ev Event) {
	h.mu.RLock()
	observers := make([]Observer, 0, len(h.subs))
	for _, fn := range h.subs {
		observers = append(observers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("state observer panicked", "event", ev.Type, "panic", r)
				}
			}()
			fn(ev)
		}()
	}
}
