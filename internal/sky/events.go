package sky

import "time"

// EventType names a horizon event.
type EventType string

const (
	EventRise      EventType = "RISE"
	EventSet       EventType = "SET"
	EventCulminate EventType = "CULMINATE"
)

// MaxEventGap bounds the time between two snapshots compared for events.
// Across longer gaps an object may have risen and set unseen.
const MaxEventGap = 10 * time.Minute

// Event is a horizon crossing or meridian transit seen between two snapshots.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Object    string    `json:"object"`
	Catalog   string    `json:"catalog"`
	Altitude  float64   `json:"altitude"`
	Azimuth   float64   `json:"azimuth"`
}

// DetectEvents compares two consecutive snapshots of the same observer.
// It returns nothing when the observer changed, time went backwards or the
// gap exceeds MaxEventGap.
func DetectEvents(prev, next Snapshot) []Event {
	if prev.IsZero() || next.IsZero() || prev.Observer != next.Observer {
		return nil
	}
	gap := next.ComputedAt.Sub(prev.ComputedAt)
	if gap <= 0 || gap > MaxEventGap {
		return nil
	}

	before := make(map[string]Position, len(prev.Positions))
	for _, p := range prev.Positions {
		before[p.Key()] = p
	}

	var events []Event
	for _, p := range next.Positions {
		old, ok := before[p.Key()]
		if !ok {
			continue
		}
		newEvent := func(t EventType) Event {
			return Event{
				Type:      t,
				Timestamp: next.ComputedAt,
				Object:    p.Name,
				Catalog:   p.Kind.String(),
				Altitude:  p.Altitude,
				Azimuth:   p.Azimuth,
			}
		}

		switch {
		case !old.AboveHorizon() && p.AboveHorizon():
			events = append(events, newEvent(EventRise))
		case old.AboveHorizon() && !p.AboveHorizon():
			events = append(events, newEvent(EventSet))
		}

		// Upper transit: the hour angle wraps from just below 24h to just
		// above 0h.
		if old.HourAngle > 12*time.Hour && p.HourAngle < 12*time.Hour {
			events = append(events, newEvent(EventCulminate))
		}
	}
	return events
}
