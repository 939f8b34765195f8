package inputlog

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const TimestampLayout = "2006-01-02 15:04:05"

type SessionInfo struct {
	Name      string
	Boss      string
	StartedAt time.Time
}

// Title renders the session as "name vs boss" for status displays.
func (i SessionInfo) Title() string {
	title := strings.TrimSpace(i.Name)
	if title == "" {
		title = "unnamed"
	}
	if boss := strings.TrimSpace(i.Boss); boss != "" {
		title += " vs " + boss
	}
	return title
}

// Sink receives the rendered text of headers and state lines.
type Sink interface {
	Append(text string) error
}

// FileSink appends to a file that is opened and closed on every write, so
// no handle outlives a single tick.
type FileSink struct {
	path string
}

func NewFileSink(path string) (*FileSink, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("output path is empty")
	}
	return &FileSink{path: path}, nil
}

func (f *FileSink) Path() string {
	return f.path
}

func (f *FileSink) Append(text string) error {
	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	if _, err := file.WriteString(text); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.path, err)
	}
	return nil
}

// FormatHeader renders the session header: timestamp, name, boss, then the
// comma-joined input names.
func FormatHeader(info SessionInfo) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(info.StartedAt.Format(TimestampLayout))
	b.WriteByte('\n')
	b.WriteString("# ")
	b.WriteString(headerField(info.Name))
	b.WriteByte('\n')
	b.WriteString("# ")
	b.WriteString(headerField(info.Boss))
	b.WriteByte('\n')
	b.WriteString(strings.Join(InputNames(), ", "))
	b.WriteByte('\n')
	return b.String()
}

// FormatLine renders one tick: a "1 " or "0 " token per input joined by ", ".
func FormatLine(state State) string {
	var b strings.Builder
	b.Grow(NumInputs * 4)
	for i, held := range state {
		if held {
			b.WriteString("1 ")
		} else {
			b.WriteString("0 ")
		}
		if i < NumInputs-1 {
			b.WriteString(", ")
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// headerField keeps a free-text field on a single header line.
func headerField(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
