package logbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logbook appends one line per event to a text file. Every line carries the
// run id so entries from one invocation can be grouped. A nil *Logbook is
// valid and drops everything.
type Logbook struct {
	path string
	run  string
	now  func() time.Time
	mu   sync.Mutex
}

// Open returns a logbook writing to path, or nil when path is empty.
func Open(path string) (*Logbook, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	return New(path)
}

// New creates a logbook that writes to the provided path with a fresh run id.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure log dir: %w", err)
	}
	return &Logbook{path: path, run: uuid.NewString(), now: time.Now}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// RunID returns the id stamped on every line of this run.
func (l *Logbook) RunID() string {
	if l == nil {
		return ""
	}
	return l.run
}

// entry is one journal line before formatting.
type entry struct {
	at      time.Time
	level   Level
	run     string
	message string
}

// String renders "<time> <level> run=<id> <message>". Newlines in the message
// are folded so every entry stays on one line.
func (e entry) String() string {
	msg := strings.Join(strings.Fields(e.message), " ")
	return fmt.Sprintf("%s %-5s run=%s %s", e.at.UTC().Format(time.RFC3339), e.level, e.run, msg)
}

// Append writes a single entry. Write failures are dropped; the draw result
// must not depend on the log file.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	l.write(entry{at: l.now(), level: level, run: l.run, message: message})
}

func (l *Logbook) write(e entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = fmt.Fprintln(file, e)
}

func (l *Logbook) logf(level Level, format string, args []any) {
	if l == nil {
		return
	}
	l.Append(level, fmt.Sprintf(format, args...))
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) { l.logf(LevelInfo, format, args) }

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) { l.logf(LevelWarn, format, args) }

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) { l.logf(LevelError, format, args) }
