// Package main provides the CLI entrypoint for inputlogger.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
)

type lineSinkWriter struct {
	sink  func(line string)
	mu    sync.Mutex
	lines bytes.Buffer
}

func (w *lineSinkWriter) Write(p []byte) (int, error) {
	if w.sink == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx == -1 {
			_, _ = w.lines.Write(p)
			break
		}
		_, _ = w.lines.Write(p[:idx])
		line := strings.TrimSpace(w.lines.String())
		w.lines.Reset()
		if line != "" {
			w.sink(line)
		}
		p = p[idx+1:]
	}
	return total, nil
}

// newSlogLogger logs to stderr only with DEBUG=1. sink additionally
// receives every log line, e.g. for the GUI log pane.
func newSlogLogger(level slog.Level, sink func(line string)) *slog.Logger {
	if !debugLogsEnabled() {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: level,
		}))
	}

	out := io.Writer(os.Stderr)
	if sink != nil {
		out = io.MultiWriter(os.Stderr, &lineSinkWriter{sink: sink})
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
}

// newSinkLogger is newSlogLogger without stderr, for the terminal shell
// where stderr would tear the screen.
func newSinkLogger(level slog.Level, sink func(line string)) *slog.Logger {
	if !debugLogsEnabled() || sink == nil {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: level,
		}))
	}
	return slog.New(slog.NewTextHandler(&lineSinkWriter{sink: sink}, &slog.HandlerOptions{
		Level: level,
	}))
}

func debugLogsEnabled() bool {
	return strings.TrimSpace(os.Getenv("DEBUG")) == "1"
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (expected debug|info|warning|error)", value)
	}
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}

// userError rewrites errors that have a known remedy.
func userError(err error) error {
	switch {
	case err == nil:
		return nil
	case isPermissionError(err):
		return fmt.Errorf("%w\n%s", err, permissionDeniedHint())
	case errors.Is(err, syscall.EBUSY):
		return fmt.Errorf("input device is in use by another app: %w", err)
	}
	return err
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "inputlogger",
		Short:         "Record game inputs to a text log, one line per tick",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			if opts.cli {
				return userError(runTUI(cfg))
			}
			return userError(runUI(cfg))
		},
	}

	bindRootFlags(rootCmd, opts)

	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newSessionsCmd(opts))
	rootCmd.AddCommand(newReportCmd(opts))
	rootCmd.AddCommand(newBindCmd(opts))

	return rootCmd
}

func bindRootFlags(rootCmd *cobra.Command, opts *options) {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "settings file (default: $XDG_CONFIG_HOME/inputlogger/settings.toml)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log verbosity: debug|info|warning|error (logs print with DEBUG=1)")
	flags.StringVar(&opts.backend, "backend", defaultBackend, "keyboard/mouse backend: auto|evdev|hook")
	flags.StringArrayVar(&opts.devices, "device", nil, "input event device to read, e.g. /dev/input/event4 (repeatable; auto-detected if omitted)")

	rootCmd.Flags().StringVar(&opts.output, "output", defaultOutput, "log file to append sessions to")
	rootCmd.Flags().Float64Var(&opts.rate, "rate", defaultRate, "sample and write rate in Hz")
	rootCmd.Flags().StringVar(&opts.gamepad, "gamepad", defaultGamepad, "gamepad backend: auto|evdev|sdl|none")
	rootCmd.Flags().StringVar(&opts.hotkey, "hotkey", defaultHotkey, "key or button that toggles logging, e.g. KEY_F4")
	rootCmd.Flags().BoolVar(&opts.latch, "latch", false, "keep presses shorter than one tick until the next line is written")
	rootCmd.Flags().BoolVar(&opts.controllerMode, "controller", false, "start in controller mode")
	rootCmd.Flags().BoolVar(&opts.cli, "cli", false, "run in the terminal instead of the desktop window")
}
