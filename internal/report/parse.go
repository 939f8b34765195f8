// Package report reads logged sessions back from the output file.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"inputlogger/internal/core/inputlog"
)

// Session summarises one header block and the state lines that follow it.
type Session struct {
	Index     int
	StartedAt time.Time
	Name      string
	Boss      string
	Samples   int
	Skipped   int

	// Per input, in column order.
	Active      [inputlog.NumInputs]int
	Presses     [inputlog.NumInputs]int
	LongestHold [inputlog.NumInputs]int

	columns []inputlog.Input
	prev    inputlog.State
	run     [inputlog.NumInputs]int
}

func ParseFile(path string) ([]Session, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()
	return Parse(file)
}

// Parse reads every session in r. Lines that do not fit the format are
// counted as skipped rather than failing the whole file.
func Parse(r io.Reader) ([]Session, error) {
	var (
		sessions []Session
		current  *Session
		stage    int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.HasPrefix(line, "#") && (stage == 0 || stage >= 4) {
			sessions = append(sessions, Session{Index: len(sessions) + 1})
			current = &sessions[len(sessions)-1]
			if ts, err := time.ParseInLocation(inputlog.TimestampLayout, headerValue(line), time.Local); err == nil {
				current.StartedAt = ts
			}
			stage = 1
			continue
		}

		switch stage {
		case 0:
			// Content before the first header.
			continue
		case 1:
			current.Name = headerValue(line)
			stage = 2
		case 2:
			current.Boss = headerValue(line)
			stage = 3
		case 3:
			columns, err := parseColumns(line)
			if err != nil {
				return nil, fmt.Errorf("session %d: %w", current.Index, err)
			}
			current.columns = columns
			stage = 4
		default:
			if strings.TrimSpace(line) == "" {
				continue
			}
			current.addLine(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		sessions[i].finish()
	}
	return sessions, nil
}

func headerValue(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, "#"))
}

func parseColumns(line string) ([]inputlog.Input, error) {
	fields := strings.Split(line, ",")
	columns := make([]inputlog.Input, 0, len(fields))
	for _, field := range fields {
		input, err := inputlog.ParseInput(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("header columns: %w", err)
		}
		columns = append(columns, input)
	}
	return columns, nil
}

func (s *Session) addLine(line string) {
	fields := strings.Split(line, ",")
	if len(fields) != len(s.columns) {
		s.Skipped++
		return
	}

	var state inputlog.State
	for i, field := range fields {
		switch strings.TrimSpace(field) {
		case "1":
			state[s.columns[i]] = true
		case "0":
		default:
			s.Skipped++
			return
		}
	}

	s.Samples++
	for i, held := range state {
		if !held {
			s.closeRun(i)
			continue
		}
		s.Active[i]++
		s.run[i]++
		if !s.prev[i] {
			s.Presses[i]++
		}
	}
	s.prev = state
}

func (s *Session) closeRun(i int) {
	if s.run[i] > s.LongestHold[i] {
		s.LongestHold[i] = s.run[i]
	}
	s.run[i] = 0
}

func (s *Session) finish() {
	for i := range s.run {
		s.closeRun(i)
	}
}

// Duration estimates the session length from its sample count.
func (s Session) Duration(rate float64) time.Duration {
	return time.Duration(s.Samples) * inputlog.RateInterval(rate)
}
