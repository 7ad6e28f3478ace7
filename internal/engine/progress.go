package engine

import "sync"

// Step names one pipeline stage; emitted on every stage boundary.
type Step string

const (
	StepResolvingCompany    Step = "resolving_company"
	StepDeterminingSiteType Step = "determining_site_type"
	StepAcquiringListings   Step = "acquiring_listings"
	StepAcquiringDetail     Step = "acquiring_detail"
	StepExtractingSkills    Step = "extracting_skills"
	StepMatchingCourses     Step = "matching_courses"
)

// Event is one progress notification.
type Event struct {
	RunID   string `json:"runId"`
	Step    Step   `json:"step"`
	Message string `json:"message"`
}

// Sink receives progress events. Passed once into the orchestrator; the
// pipeline never threads callbacks through individual functions.
type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Notify(e Event) { f(e) }

// ChannelSink bridges pipeline events to a consumer channel. Notify after
// Close (or with a full buffer) is a silent no-op: the consumer may have
// disconnected already.
type ChannelSink struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(buf int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, buf)}
}

// Events is the consumer side. Closed by Close.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

// Notify enqueues without blocking; drops when closed or full.
func (s *ChannelSink) Notify(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- e:
	default:
	}
}

// Close closes the consumer channel. Safe to call more than once.
func (s *ChannelSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
