package async

import "time"

// EventType discriminates relay events.
type EventType string

const (
	// EventProgress carries a percent and step update.
	EventProgress EventType = "progress"
	// EventLog carries a human-readable status line.
	EventLog EventType = "log"
	// EventDone signals successful completion.
	EventDone EventType = "done"
	// EventError signals failure with a message and error code.
	EventError EventType = "error"
)

// Event is one relay message for a job. Consumers (UIs, the watch
// command) key on JobID and Type; unused fields are zero.
type Event struct {
	JobID     string    `json:"id"`
	Type      EventType `json:"type"`
	Percent   int       `json:"percent,omitempty"`
	Step      string    `json:"step,omitempty"`
	Message   string    `json:"message,omitempty"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// emitter sends events without ever blocking the job: when the consumer
// falls behind, events are dropped rather than stalling index work.
type emitter struct {
	jobID  string
	events chan Event
}

func newEmitter(jobID string, buffer int) *emitter {
	if buffer <= 0 {
		buffer = 64
	}
	return &emitter{
		jobID:  jobID,
		events: make(chan Event, buffer),
	}
}

func (e *emitter) send(ev Event) {
	ev.JobID = e.jobID
	ev.Timestamp = time.Now()
	select {
	case e.events <- ev:
	default:
	}
}

func (e *emitter) progress(percent int, step string) {
	e.send(Event{Type: EventProgress, Percent: percent, Step: step})
}

func (e *emitter) log(message string) {
	e.send(Event{Type: EventLog, Message: message})
}

func (e *emitter) done() {
	e.send(Event{Type: EventDone, Percent: 100})
}

func (e *emitter) error(message, code string) {
	e.send(Event{Type: EventError, Message: message, Code: code})
}

func (e *emitter) close() {
	close(e.events)
}
