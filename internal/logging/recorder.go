package logging

import "sync"

// Entry is one recorded log event
type Entry struct {
	Level   Level
	Message string
	Fields  Fields
}

// Recorder is an in-memory Logger for tests and diagnostics
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Log records the event
func (r *Recorder) Log(level Level, message string, fields Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: message, Fields: merge(fields, nil)})
}

// Entries returns a copy of everything recorded so far
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Find returns the entries whose message matches exactly
func (r *Recorder) Find(message string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Message == message {
			out = append(out, e)
		}
	}
	return out
}
