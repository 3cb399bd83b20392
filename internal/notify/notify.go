// Package notify delivers fire-and-forget user-facing messages.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Sink receives notifications. No caller depends on delivery.
type Sink interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// Message is one delivered notification.
type Message struct {
	Level Level     `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// Logger writes notifications to a zap logger.
type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("notify")}
}

func (l *Logger) Success(msg string) { l.logger.Info(msg, zap.String("level", string(LevelSuccess))) }
func (l *Logger) Info(msg string)    { l.logger.Info(msg, zap.String("level", string(LevelInfo))) }
func (l *Logger) Error(msg string)   { l.logger.Warn(msg, zap.String("level", string(LevelError))) }

// Recorder buffers notifications so they can be returned with a response.
// It optionally forwards to another sink.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
	next Sink
}

func NewRecorder(next Sink) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, Message{Level: level, Text: msg, At: time.Now().UTC()})
	r.mu.Unlock()
	if r.next == nil {
		return
	}
	switch level {
	case LevelSuccess:
		r.next.Success(msg)
	case LevelError:
		r.next.Error(msg)
	default:
		r.next.Info(msg)
	}
}

// Drain returns and clears the buffered messages.
func (r *Recorder) Drain() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.msgs
	r.msgs = nil
	return out
}

// Messages returns a copy of the buffered messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Info(string)    {}
func (Discard) Error(string)   {}
