package ui

// Stage is one phase of translating a netlist.
type Stage string

const (
	StageRead     Stage = "read"
	StageResolve  Stage = "resolve"
	StageContexts Stage = "contexts"
	StageWrite    Stage = "write"
)

// Status is the state of a file within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusCached  Status = "cached"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file, or for the whole run when File is
// empty.
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

// Sink receives progress events.
type Sink interface {
	OnEvent(Event)
}

// ChanSink forwards events to a channel read by the progress model.
type ChanSink chan<- Event

func (s ChanSink) OnEvent(ev Event) { s <- ev }

// NopSink drops every event.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}
