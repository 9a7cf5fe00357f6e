package diag

import "go.uber.org/zap"

// Sink abstracts whatever collects the runtime's lifecycle events —
// remote devtools, a console hook, a metrics exporter. spec.md §6
// calls for the devtools/console-hook/URL-bootstrap triad to sit
// behind one narrow seam rather than be wired directly into ecs/system;
// this is that seam. Payload is whatever the emitting call site finds
// useful (usually a map[string]any) — Sink implementations decide how
// to render it.
type Sink interface {
	Emit(event string, payload any)
}

// NopSink discards every event. The zero value is ready to use.
type NopSink struct{}

// Emit implements Sink.
func (NopSink) Emit(string, any) {}

// LogSink forwards events to a *zap.Logger at info level, named for the
// event and carrying payload under the "payload" field.
type LogSink struct {
	Log *zap.Logger
}

// Emit implements Sink.
func (s LogSink) Emit(event string, payload any) {
	if s.Log == nil {
		return
	}
	s.Log.Info(event, zap.Any("payload", payload))
}
