package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"inputlogger/internal/core/inputlog"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Render writes a summary of each session. rate is the write rate the file
// was recorded at; now anchors relative times.
func Render(w io.Writer, sessions []Session, rate float64, now time.Time) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("no sessions recorded"))
		return err
	}
	blocks := make([]string, 0, len(sessions))
	for _, session := range sessions {
		blocks = append(blocks, renderSession(session, rate, now))
	}
	_, err := fmt.Fprintln(w, strings.Join(blocks, "\n\n"))
	return err
}

func renderSession(s Session, rate float64, now time.Time) string {
	title := fmt.Sprintf("Session %d: %s", s.Index, displayOr(s.Name, "unnamed"))
	if s.Boss != "" {
		title += " vs " + s.Boss
	}

	started := "unknown start"
	if !s.StartedAt.IsZero() {
		started = s.StartedAt.Format(inputlog.TimestampLayout) + " (" + humanize.RelTime(s.StartedAt, now, "ago", "from now") + ")"
	}
	meta := fmt.Sprintf("%s, %s samples, ~%s", started, humanize.Comma(int64(s.Samples)), s.Duration(rate).Round(time.Second))
	if s.Skipped > 0 {
		meta += fmt.Sprintf(", %s malformed lines skipped", humanize.Comma(int64(s.Skipped)))
	}

	headers := []string{"input", "presses", "active", "longest hold"}
	rows := make([][]string, 0, inputlog.NumInputs)
	interval := inputlog.RateInterval(rate)
	for _, input := range inputlog.Inputs() {
		rows = append(rows, []string{
			input.String(),
			humanize.Comma(int64(s.Presses[input])),
			percent(s.Active[input], s.Samples),
			(time.Duration(s.LongestHold[input]) * interval).String(),
		})
	}

	lines := []string{titleStyle.Render(title), mutedStyle.Render(meta)}
	lines = append(lines, formatTable(headers, rows)...)
	return strings.Join(lines, "\n")
}

func formatTable(headers []string, rows [][]string) []string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, formatRow(headers, widths, headerStyle))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, lipgloss.NewStyle()))
	}
	return lines
}

func formatRow(row []string, widths []int, style lipgloss.Style) string {
	cells := make([]string, len(row))
	for i, cell := range row {
		align := lipgloss.Right
		if i == 0 {
			align = lipgloss.Left
		}
		cells[i] = style.Width(widths[i]).Align(align).Render(cell)
	}
	return strings.Join(cells, "  ")
}

func percent(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}

func displayOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
