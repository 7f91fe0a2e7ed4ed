package roster

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRoster(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadKeepsRowOrder(t *testing.T) {
	path := writeRoster(t, "students.csv", "id,name\n1,Alice\n2,Bob\n3,Charlie\n4,David\n")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Roster{{"1", "Alice"}, {"2", "Bob"}, {"3", "Charlie"}, {"4", "David"}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseAcceptsSwappedColumns(t *testing.T) {
	got, err := Parse("swapped.csv", strings.NewReader("name,id\nAlice,1\nBob,2\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got[0].ID != "1" || got[0].Name != "Alice" || got[1].ID != "2" || got[1].Name != "Bob" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestParseKeepsQuotesInsideNames(t *testing.T) {
	got, err := Parse("quotes.csv", strings.NewReader("id,name\n1,O\"Brien\n2,Robert \"Bob\" Smith\n3,\"Lee, Ann\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{`O"Brien`, `Robert "Bob" Smith`, "Lee, Ann"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %+v", len(want), got)
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("record %d name = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestParseKeepsDuplicateRows(t *testing.T) {
	got, err := Parse("dups.csv", strings.NewReader("id,name\n7,Sam\n7,Sam\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("duplicate rows must be kept, got %d", len(got))
	}
}

func TestParseStripsByteOrderMark(t *testing.T) {
	got, err := Parse("bom.csv", strings.NewReader("\ufeffid,name\n1,Alice\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestParseEmptySources(t *testing.T) {
	for name, content := range map[string]string{
		"header only": "id,name\n",
		"no bytes":    "",
	} {
		got, err := Parse(name, strings.NewReader(content))
		if err != nil {
			t.Fatalf("%s: Parse: %v", name, err)
		}
		if len(got) != 0 {
			t.Fatalf("%s: expected empty roster, got %+v", name, got)
		}
	}
}

func TestParseRejectsShapeViolations(t *testing.T) {
	cases := []struct {
		name    string
		content string
		cause   string
	}{
		{"extra column", "id,name,extra\n1,Alice,foo\n2,Bob,bar\n", `unknown column "extra"`},
		{"missing column", "id\n1\n2\n", `missing column "name"`},
		{"renamed column", "id,fullname\n1,Alice\n2,Bob\n", `unknown column "fullname"`},
		{"duplicate column", "id,id\n1,1\n", `duplicate column "id"`},
		{"semicolon delimiter", "id;name\n1;Alice\n2;Bob\n", `unknown column "id;name"`},
		{"long row", "id,name\n1,Alice\n2,Bob,extra\n", "wrong number of fields"},
		{"short row", "id,name\n1,Alice\n2\n", "wrong number of fields"},
		{"invalid utf-8", "id,name\n1,Alice\n2,\xff\xfe\n", "line 3: invalid UTF-8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse("bad.csv", strings.NewReader(tc.content))
			if err == nil {
				t.Fatalf("expected error, got roster %+v", got)
			}
			if got != nil {
				t.Fatalf("no partial roster expected, got %+v", got)
			}
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("expected malformed input, got %v", err)
			}
			msg := err.Error()
			if !strings.HasPrefix(msg, "Error: Failed to parse CSV file 'bad.csv': ") {
				t.Fatalf("unexpected message %q", msg)
			}
			if !strings.Contains(msg, tc.cause) {
				t.Fatalf("message %q missing cause %q", msg, tc.cause)
			}
		})
	}
}

func TestLoadValidationOrdering(t *testing.T) {
	empty := writeRoster(t, "empty.csv", "id,name\n")
	_, err := Load(empty)
	if !errors.Is(err, ErrEmptyRoster) || errors.Is(err, ErrInsufficientRoster) {
		t.Fatalf("expected empty roster error, got %v", err)
	}
	if want := "Error: The student list in '" + empty + "' is empty."; err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}

	blank := writeRoster(t, "blank.csv", "")
	if _, err := Load(blank); KindOf(err) != EmptyRoster {
		t.Fatalf("expected empty roster for blank file, got %v", err)
	}

	single := writeRoster(t, "one.csv", "id,name\n1,Alice")
	_, err = Load(single)
	if !errors.Is(err, ErrInsufficientRoster) || errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("expected insufficient roster error, got %v", err)
	}
	want := "Error: Not enough students in '" + single + "' to select two. Found 1."
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "non_existent_file.csv")
	_, err := Load(path)
	if KindOf(err) != SourceUnavailable {
		t.Fatalf("expected source unavailable, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cause should unwrap to os.ErrNotExist, got %v", err)
	}
	prefix := "Error: Could not open file '" + path + "': "
	if !strings.HasPrefix(err.Error(), prefix) {
		t.Fatalf("message %q missing prefix %q", err.Error(), prefix)
	}
}

func TestLoadDirectoryIsUnavailable(t *testing.T) {
	_, err := Load(t.TempDir())
	if KindOf(err) != SourceUnavailable {
		t.Fatalf("expected source unavailable for a directory, got %v", err)
	}
}

func TestRequireGeneralizesToRoleCount(t *testing.T) {
	r := Roster{{"1", "a"}, {"2", "b"}}
	if err := r.Require("x.csv", 2); err != nil {
		t.Fatalf("two rows fill two roles: %v", err)
	}
	err := r.Require("x.csv", 3)
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Found != 2 || rerr.Need != 3 {
		t.Fatalf("unexpected error %#v", err)
	}
	if !strings.Contains(err.Error(), "to select three. Found 2.") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "students.csv")
	in := Roster{{"1", "Alice"}, {"2", "Bob, Jr."}}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[1].Name != "Bob, Jr." {
		t.Fatalf("unexpected roster %+v", out)
	}

	var buf bytes.Buffer
	if err := Write(&buf, in[:1]); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "id,name\n1,Alice\n" {
		t.Fatalf("unexpected csv %q", buf.String())
	}
}
