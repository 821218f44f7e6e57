// Package logger builds the application's slog-based httplog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/httplog/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level   string
	JSON    bool
	Concise bool
	// File enables a rotating log file written alongside stdout.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Output replaces stdout, mainly for tests.
	Output io.Writer
	// HideHeaders lists request headers that must not be logged in clear.
	HideHeaders []string
}

// New returns the logger and a closer for its file output. The closer is a no-op without one.
func New(serviceName string, opts Options) (*httplog.Logger, io.Closer, error) {
	const op = "logger.New"

	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}

	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
		out = io.MultiWriter(out, file)
		closer = file
	}

	hidden := make([]string, 0, len(opts.HideHeaders))
	for _, h := range opts.HideHeaders {
		hidden = append(hidden, strings.ToLower(h))
	}

	logger := httplog.NewLogger(serviceName, httplog.Options{
		LogLevel:           level,
		JSON:               opts.JSON,
		Concise:            opts.Concise,
		RequestHeaders:     !opts.Concise,
		HideRequestHeaders: hidden,
		Writer:             out,
	})

	return logger, closer, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}

	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}

	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
