package logger

import (
	"context"
	"sync"
	"time"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/rs/zerolog"
)

// Sink receives processing log entries for a run.
type Sink interface {
	Write(entry dto.LogEntry)
}

// Info records an info entry on s.
func Info(s Sink, msg string, details map[string]any) {
	emit(s, dto.LogInfo, msg, details)
}

func Warning(s Sink, msg string, details map[string]any) {
	emit(s, dto.LogWarning, msg, details)
}

func Error(s Sink, msg string, details map[string]any) {
	emit(s, dto.LogError, msg, details)
}

func emit(s Sink, level dto.LogLevel, msg string, details map[string]any) {
	if s == nil {
		return
	}
	s.Write(dto.LogEntry{
		Level:     level,
		Message:   msg,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

// Recorder keeps entries in memory so they can be attached to a result.
type Recorder struct {
	mu      sync.Mutex
	entries []dto.LogEntry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Write(entry dto.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []dto.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dto.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ZerologSink forwards entries to a zerolog logger.
type ZerologSink struct {
	log zerolog.Logger
}

func NewZerologSink(log zerolog.Logger) *ZerologSink {
	return &ZerologSink{log: log}
}

func (z *ZerologSink) Write(entry dto.LogEntry) {
	var ev *zerolog.Event
	switch entry.Level {
	case dto.LogError:
		ev = z.log.Error()
	case dto.LogWarning:
		ev = z.log.Warn()
	default:
		ev = z.log.Info()
	}
	ev.Fields(entry.Details).Msg(entry.Message)
}

// Multi fans entries out to every non-nil sink.
type Multi []Sink

func (m Multi) Write(entry dto.LogEntry) {
	for _, s := range m {
		if s != nil {
			s.Write(entry)
		}
	}
}

type sinkKey struct{}

// WithSink attaches a run's sink to the context so backends can report on it.
func WithSink(ctx context.Context, s Sink) context.Context {
	return context.WithValue(ctx, sinkKey{}, s)
}

// SinkFromContext returns the attached sink, or nil.
func SinkFromContext(ctx context.Context) Sink {
	s, _ := ctx.Value(sinkKey{}).(Sink)
	return s
}
