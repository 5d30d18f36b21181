package backtest

import "github.com/hadoku/trader/internal/contracts"

// EventLog is the append-only record of everything that happened during
// a run. Sequence numbers are assigned on append and never reused.
type EventLog struct {
	events []contracts.Event
	seq    int
}

// NewEventLog returns an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Append stamps the next sequence number onto e, stores it and returns
// the stamped event.
func (l *EventLog) Append(e contracts.Event) contracts.Event {
	l.seq++
	e.Seq = l.seq
	l.events = append(l.events, e)
	return e
}

// Events returns the recorded events in append order.
func (l *EventLog) Events() []contracts.Event {
	return l.events
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int { return len(l.events) }

// ByType filters the log down to a single event type.
func (l *EventLog) ByType(t contracts.EventType) []contracts.Event {
	var out []contracts.Event
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// ByAgent filters the log down to a single agent's events.
func (l *EventLog) ByAgent(agentID string) []contracts.Event {
	var out []contracts.Event
	for _, e := range l.events {
		if e.AgentID == agentID {
			out = append(out, e)
		}
	}
	return out
}
