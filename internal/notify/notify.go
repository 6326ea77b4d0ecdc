// Package notify delivers short-lived success and error messages to the operator.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Level distinguishes success notices from failures.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a single user-visible message.
type Notification struct {
	Level   Level
	Message string
}

// Notifier displays transient messages.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Writer prints notifications as single lines to an io.Writer.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter returns a Notifier that writes to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Success prints a success line.
func (w *Writer) Success(message string) {
	w.write("✔", message)
}

// Error prints an error line.
func (w *Writer) Error(message string) {
	w.write("✖", message)
}

func (w *Writer) write(marker, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintf(w.out, "%s %s\n", marker, message)
}

// Recorder keeps every notification in memory. Useful for tests.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Success records a success notification.
func (r *Recorder) Success(message string) {
	r.add(LevelSuccess, message)
}

// Error records an error notification.
func (r *Recorder) Error(message string) {
	r.add(LevelError, message)
}

func (r *Recorder) add(level Level, message string) {
	r.mu.Lock()
	r.items = append(r.items, Notification{Level: level, Message: message})
	r.mu.Unlock()
}

// All returns a copy of the recorded notifications in emission order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Errors returns only the error messages.
func (r *Recorder) Errors() []string {
	return r.messages(LevelError)
}

// Successes returns only the success messages.
func (r *Recorder) Successes() []string {
	return r.messages(LevelSuccess)
}

func (r *Recorder) messages(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.items {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}
