package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"inputlogger/internal/adapters/sdlpad"
	"inputlogger/internal/config"
	"inputlogger/internal/core/inputlog"
	"inputlogger/internal/report"
	"inputlogger/internal/store"
)

const bindTimeout = 10 * time.Second

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List input devices and game controllers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if err := listInputDevices(out); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "input devices: %v\n", userError(err))
			}
			names, err := sdlpad.ListControllers()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "game controllers: %v\n", err)
				return nil
			}
			for i, name := range names {
				fmt.Fprintf(out, "sdl:%d: %s [game controller]\n", i, name)
			}
			return nil
		},
	}
}

func newSessionsCmd(opts *options) *cobra.Command {
	var (
		last int
		id   int64
	)
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions from the session index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.dbPath)
			if err != nil {
				return fmt.Errorf("failed to open db: %w", err)
			}
			defer func() {
				if cerr := st.Close(); cerr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed to close db: %v\n", cerr)
				}
			}()

			if id > 0 {
				session, err := st.GetSession(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printSessions(cmd.OutOrStdout(), []store.Session{session}, time.Now())
			}

			sessions, err := st.ListSessions(cmd.Context(), last)
			if err != nil {
				return err
			}
			return printSessions(cmd.OutOrStdout(), sessions, time.Now())
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "number of most recent sessions to show (0 for all)")
	cmd.Flags().Int64Var(&id, "id", 0, "show only the session with this id")
	return cmd
}

func printSessions(w io.Writer, sessions []store.Session, now time.Time) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "no sessions recorded")
		return err
	}
	for _, s := range sessions {
		length := "running"
		if s.Finished() {
			length = s.Duration().Round(time.Second).String()
		}
		name := inputlog.SessionInfo{Name: s.Name, Boss: s.Boss}.Title()
		if _, err := fmt.Fprintf(w, "#%d  %s  %s  %s, %s lines, %s  %s\n",
			s.ID,
			s.StartedAt.Local().Format(inputlog.TimestampLayout),
			humanize.RelTime(s.StartedAt, now, "ago", "from now"),
			length,
			humanize.Comma(int64(s.Lines)),
			s.Mode,
			name,
		); err != nil {
			return err
		}
	}
	return nil
}

func newReportCmd(opts *options) *cobra.Command {
	var (
		sessionIndex int
		rate         float64
	)
	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Summarize the sessions of a log file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			path := cfg.output
			if len(args) == 1 {
				path = args[0]
			}
			if !cmd.Flags().Changed("rate") {
				rate = cfg.rate
			}

			sessions, err := report.ParseFile(path)
			if err != nil {
				return err
			}
			if sessionIndex > 0 {
				if sessionIndex > len(sessions) {
					return fmt.Errorf("--session %d: %s has %d sessions", sessionIndex, path, len(sessions))
				}
				sessions = sessions[sessionIndex-1 : sessionIndex]
			}
			return report.Render(cmd.OutOrStdout(), sessions, rate, time.Now())
		},
	}
	cmd.Flags().IntVar(&sessionIndex, "session", 0, "only show the Nth session of the file (1-based)")
	cmd.Flags().Float64Var(&rate, "rate", defaultRate, "rate in Hz the file was recorded at")
	return cmd
}

func newBindCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bind <input>",
		Short: "Bind an input to the next key or button pressed",
		Long: "Bind an input (left, right, up, down, jump, dash, attack, superdash, dreamnail, cast, focus)\n" +
			"to the next key or mouse button pressed anywhere, and save it to the settings file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := inputlog.ParseInput(args[0])
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Press a key or mouse button for %s...\n", input)
			ctx, cancel := context.WithTimeout(cmd.Context(), bindTimeout)
			defer cancel()
			code, err := captureNextCode(ctx, cfg.backend, cfg.devices)
			if err != nil {
				return userError(err)
			}
			if code == cfg.hotkeyCode {
				return fmt.Errorf("%s is the logging hotkey; choose a different key/button", formatCodeName(code))
			}

			bindings, err := cfg.bindings.With(input, code)
			if err != nil {
				return err
			}
			s := cfg.settings
			s.SetBindings(bindings)
			if err := config.Save(cfg.settingsPath, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s bound to %s (%s)\n", input, formatCodeName(code), displayCodeName(code))
			return nil
		},
	}
	return cmd
}
