package inputlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFormatHeader(t *testing.T) {
	header := FormatHeader(SessionInfo{
		Name:      "Zote\n",
		Boss:      "False Knight\n",
		StartedAt: time.Date(2024, 3, 9, 18, 4, 5, 0, time.UTC),
	})

	lines := strings.Split(strings.TrimSuffix(header, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("header has %d lines, want 4: %q", len(lines), header)
	}
	if lines[0] != "# 2024-03-09 18:04:05" {
		t.Fatalf("timestamp line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "# Zote") {
		t.Fatalf("name line = %q, want prefix %q", lines[1], "# Zote")
	}
	if !strings.HasPrefix(lines[2], "# False Knight") {
		t.Fatalf("boss line = %q, want prefix %q", lines[2], "# False Knight")
	}
	names := strings.Split(lines[3], ", ")
	if len(names) != NumInputs {
		t.Fatalf("names line has %d entries, want %d: %q", len(names), NumInputs, lines[3])
	}
	if names[0] != "left" || names[NumInputs-1] != "focus" {
		t.Fatalf("unexpected names line %q", lines[3])
	}
}

func TestFormatHeaderKeepsFieldsOnOneLine(t *testing.T) {
	header := FormatHeader(SessionInfo{Name: "a\nb", Boss: "  Hornet  "})
	lines := strings.Split(header, "\n")
	if lines[1] != "# a b" {
		t.Fatalf("name line = %q", lines[1])
	}
	if lines[2] != "# Hornet" {
		t.Fatalf("boss line = %q", lines[2])
	}
}

func TestSessionTitle(t *testing.T) {
	tests := []struct {
		info SessionInfo
		want string
	}{
		{SessionInfo{Name: "Zote", Boss: "Hornet"}, "Zote vs Hornet"},
		{SessionInfo{Name: "Zote"}, "Zote"},
		{SessionInfo{Boss: " Hornet "}, "unnamed vs Hornet"},
		{SessionInfo{}, "unnamed"},
	}
	for _, tt := range tests {
		if got := tt.info.Title(); got != tt.want {
			t.Fatalf("Title(%+v) = %q, want %q", tt.info, got, tt.want)
		}
	}
}

func TestFormatLine(t *testing.T) {
	var state State
	state[Left] = true
	state[Focus] = true

	want := "1 , 0 , 0 , 0 , 0 , 0 , 0 , 0 , 0 , 0 , 1 \n"
	if got := FormatLine(state); got != want {
		t.Fatalf("FormatLine() = %q, want %q", got, want)
	}
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.txt")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink() error = %v", err)
	}

	if err := sink.Append("first\n"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := sink.Append("second\n"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Fatalf("file content = %q", string(data))
	}
}

func TestFileSinkReportsOpenFailure(t *testing.T) {
	sink, err := NewFileSink(filepath.Join(t.TempDir(), "missing", "output.txt"))
	if err != nil {
		t.Fatalf("NewFileSink() error = %v", err)
	}
	if err := sink.Append("x\n"); err == nil {
		t.Fatalf("expected error when parent directory does not exist")
	}
}

func TestNewFileSinkRejectsEmptyPath(t *testing.T) {
	if _, err := NewFileSink("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
