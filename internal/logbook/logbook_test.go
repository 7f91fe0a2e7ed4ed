package logbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendWritesLevelledLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "touban.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.now = func() time.Time { return time.Date(2026, 2, 4, 8, 0, 0, 0, time.UTC) }
	book.Info("drew %d of %d", 2, 4)
	book.Warn("path kept as given")
	book.Error("load failed: %s", "empty-roster")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	for idx, want := range []string{"INFO  run=" + book.RunID() + " drew 2 of 4", "WARN  run=", "ERROR run=" + book.RunID() + " load failed: empty-roster"} {
		if !strings.HasPrefix(lines[idx], "2026-02-04T08:00:00Z ") {
			t.Fatalf("line %d = %q, missing timestamp", idx, lines[idx])
		}
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %q", idx, lines[idx], want)
		}
	}
}

func TestRunIDsDiffer(t *testing.T) {
	dir := t.TempDir()
	a, err := New(filepath.Join(dir, "a.log"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(filepath.Join(dir, "b.log"))
	if err != nil {
		t.Fatal(err)
	}
	if a.RunID() == "" || a.RunID() == b.RunID() {
		t.Fatalf("run ids must be set and unique: %q %q", a.RunID(), b.RunID())
	}
}

func TestOpenWithoutPathIsNoop(t *testing.T) {
	book, err := Open("  ")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if book != nil {
		t.Fatalf("expected nil logbook, got %+v", book)
	}
	book.Info("dropped")
	if book.Path() != "" || book.RunID() != "" {
		t.Fatalf("nil logbook should report empty values")
	}
}

func TestEntryFoldsMultilineMessages(t *testing.T) {
	e := entry{
		at:      time.Date(2026, 2, 4, 17, 30, 0, 0, time.FixedZone("JST", 9*60*60)),
		level:   LevelWarn,
		run:     "r1",
		message: "  cancelled\n  by user ",
	}
	want := "2026-02-04T08:30:00Z WARN  run=r1 cancelled by user"
	if got := e.String(); got != want {
		t.Fatalf("entry = %q, want %q", got, want)
	}
}
