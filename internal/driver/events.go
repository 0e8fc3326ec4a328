package driver

import "time"

// Stage names a step of a file validation run.
type Stage string

const (
	StageLoad     Stage = "load"
	StageValidate Stage = "validate"
	StageCache    Stage = "cache"
)

// Status reports whether a stage started or finished.
type Status int

const (
	StatusStart Status = iota
	StatusEnd
	StatusSkipped
)

// Event describes a stage boundary while validating one file.
type Event struct {
	Path    string
	Stage   Stage
	Status  Status
	Elapsed time.Duration
	// Err is set on StatusEnd when the stage failed.
	Err error
}

// Sink receives events emitted during a directory run. Implementations
// must be safe for concurrent use: файлы обрабатываются параллельно.
type Sink interface {
	Emit(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// ChannelSink forwards events to a channel, dropping them when the
// consumer falls behind. Используется прогресс-интерфейсом.
type ChannelSink struct {
	C chan Event
}

func NewChannelSink(buf int) *ChannelSink {
	return &ChannelSink{C: make(chan Event, buf)}
}

func (s *ChannelSink) Emit(e Event) {
	select {
	case s.C <- e:
	default:
	}
}

// Close closes the underlying channel. Call only after the run finished.
func (s *ChannelSink) Close() { close(s.C) }
