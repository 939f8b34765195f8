package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inputlogger/internal/core/inputlog"
)

func sampleFile(t *testing.T) string {
	t.Helper()
	started := time.Date(2024, 3, 9, 18, 4, 5, 0, time.Local)

	var jumpOnly, jumpAttack inputlog.State
	jumpOnly[inputlog.Jump] = true
	jumpAttack[inputlog.Jump] = true
	jumpAttack[inputlog.Attack] = true

	var b strings.Builder
	b.WriteString(inputlog.FormatHeader(inputlog.SessionInfo{Name: "Zote", Boss: "False Knight", StartedAt: started}))
	b.WriteString(inputlog.FormatLine(inputlog.State{}))
	b.WriteString(inputlog.FormatLine(jumpOnly))
	b.WriteString(inputlog.FormatLine(jumpAttack))
	b.WriteString(inputlog.FormatLine(jumpOnly))
	b.WriteString(inputlog.FormatLine(inputlog.State{}))
	b.WriteString(inputlog.FormatLine(jumpOnly))
	b.WriteString(inputlog.FormatHeader(inputlog.SessionInfo{StartedAt: started.Add(time.Hour)}))
	b.WriteString("garbage\n")
	b.WriteString(inputlog.FormatLine(jumpOnly))
	return b.String()
}

func TestParseSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleFile(t)))
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	first := sessions[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, "Zote", first.Name)
	assert.Equal(t, "False Knight", first.Boss)
	assert.Equal(t, 2024, first.StartedAt.Year())
	assert.Equal(t, 6, first.Samples)
	assert.Equal(t, 0, first.Skipped)
	assert.Equal(t, 4, first.Active[inputlog.Jump])
	assert.Equal(t, 2, first.Presses[inputlog.Jump])
	assert.Equal(t, 3, first.LongestHold[inputlog.Jump])
	assert.Equal(t, 1, first.Presses[inputlog.Attack])
	assert.Equal(t, 1, first.LongestHold[inputlog.Attack])
	assert.Equal(t, 0, first.Active[inputlog.Left])

	second := sessions[1]
	assert.Equal(t, "", second.Name)
	assert.Equal(t, 1, second.Samples)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 1, second.LongestHold[inputlog.Jump])
}

func TestParseRejectsUnknownColumns(t *testing.T) {
	_, err := Parse(strings.NewReader("# 2024-03-09 18:04:05\n# a\n# b\nleft, sprint\n"))
	require.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleFile(t)), 0o644))

	sessions, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestDuration(t *testing.T) {
	s := Session{Samples: 900}
	assert.Equal(t, 90*time.Second, s.Duration(10))
	assert.Equal(t, 45*time.Second, s.Duration(20))
}

func TestRender(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleFile(t)))
	require.NoError(t, err)

	var buf bytes.Buffer
	now := sessions[0].StartedAt.Add(3 * time.Hour)
	require.NoError(t, Render(&buf, sessions, 10, now))

	out := buf.String()
	assert.Contains(t, out, "Session 1: Zote vs False Knight")
	assert.Contains(t, out, "Session 2: unnamed")
	assert.Contains(t, out, "3 hours ago")
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, "300ms")
	assert.Contains(t, out, "1 malformed lines skipped")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil, 10, time.Now()))
	assert.Contains(t, buf.String(), "no sessions recorded")
}
