package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Mohsinsiddi/w3pool/internal/pool"
)

// Log is an append-only JSONL journal of pool events, one JSON object per
// line. It implements pool.Recorder; the pool has already committed by the
// time Record runs, so a failed write is remembered rather than returned.
type Log struct {
	path string

	mu      sync.Mutex
	lastErr error
}

// NewLog creates a journal backed by the given file. The file is created on
// first append.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Record appends the event, keeping any write failure for Err.
func (l *Log) Record(ev pool.Event) {
	if err := l.Append(ev); err != nil {
		l.mu.Lock()
		l.lastErr = err
		l.mu.Unlock()
	}
}

// Err returns the most recent write failure, if any.
func (l *Log) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Append writes one event to the journal.
func (l *Log) Append(ev pool.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return f.Close()
}

// All reads the whole journal in append order. A missing file is an empty
// journal, not an error.
func (l *Log) All() ([]pool.Event, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []pool.Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev pool.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("corrupt journal line %d: %w", len(out)+1, err)
		}
		out = append(out, ev)
	}
	return out, sc.Err()
}

// Tail returns the last n events in append order.
func (l *Log) Tail(n int) ([]pool.Event, error) {
	all, err := l.All()
	if err != nil {
		return nil, err
	}
	if n <= 0 || n >= len(all) {
		return all, nil
	}
	return all[len(all)-n:], nil
}
