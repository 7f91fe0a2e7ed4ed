// Package report renders draw results and failures for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/kingrea/touban/internal/draw"
)

const (
	DefaultPrimaryLabel = "正担当"
	DefaultBackupLabel  = "副担当"

	failurePrefix = "Error:"
)

// Labels are the role captions printed before each pick.
type Labels struct {
	Primary string
	Backup  string
}

// DefaultLabels returns the stock primary/backup captions.
func DefaultLabels() Labels {
	return Labels{Primary: DefaultPrimaryLabel, Backup: DefaultBackupLabel}
}

// Line renders one "<label>: <id> <name>" line without the newline.
func Line(label string, a draw.Assignment) string {
	return fmt.Sprintf("%s: %s %s", label, a.Record.ID, a.Record.Name)
}

// Format renders the selection as exactly two newline-terminated lines.
func Format(sel draw.Selection, labels Labels) string {
	var b strings.Builder
	b.WriteString(Line(labels.Primary, sel.Primary))
	b.WriteByte('\n')
	b.WriteString(Line(labels.Backup, sel.Backup))
	b.WriteByte('\n')
	return b.String()
}

// Write sends Format's output to w in a single write.
func Write(w io.Writer, sel draw.Selection, labels Labels) error {
	_, err := io.WriteString(w, Format(sel, labels))
	return err
}

// Failure renders err as the single line printed on stderr. Roster errors
// already carry the prefix; anything else gets it added.
func Failure(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	if strings.HasPrefix(msg, failurePrefix) {
		return msg
	}
	return failurePrefix + " " + msg
}
