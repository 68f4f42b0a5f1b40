package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Level orders log messages by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel accepts the level names used in config files.
// "WARNING" and "WARN" are equivalent.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO", "":
		return LevelInfo, true
	case "WARNING", "WARN":
		return LevelWarn, true
	case "ERROR", "CRITICAL":
		return LevelError, true
	}
	return LevelInfo, false
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

type Logger struct {
	out   io.Writer
	err   io.Writer
	json  bool
	level Level
}

func DefaultLogger() Logger {
	return Logger{
		out:   os.Stdout,
		err:   os.Stderr,
		level: LevelInfo,
	}
}

// NewLogger builds a logger writing results to out and diagnostics to err.
// verbose forces debug output; quiet drops everything below errors.
// When json is set, Out is suppressed: results are emitted by the caller as json instead.
func NewLogger(out, err io.Writer, json, quiet, verbose bool) Logger {
	l := Logger{
		out:   out,
		err:   err,
		json:  json,
		level: LevelInfo,
	}
	switch {
	case verbose:
		l.level = LevelDebug
	case quiet:
		l.level = LevelError
	}
	return l
}

// WithLevel returns a copy of the logger with the given threshold.
func (l Logger) WithLevel(level Level) Logger {
	l.level = level
	return l
}

func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) Out(f string, args ...interface{}) {
	if l.json {
		return
	}
	fmt.Fprintf(l.out, f+"\n", args...)
}

func (l *Logger) OutRaw(s string) {
	if l.json {
		return
	}
	fmt.Fprintf(l.out, "%s", s)
}

func (l *Logger) Debug(tag string, f string, args ...interface{}) {
	if l.level <= LevelDebug {
		print(l.err, color.New(color.FgGreen), tag, f, args...)
	}
}

func (l *Logger) Info(tag string, f string, args ...interface{}) {
	if l.level <= LevelInfo {
		print(l.err, color.New(color.FgHiGreen), tag, f, args...)
	}
}

func (l *Logger) Warn(tag string, f string, args ...interface{}) {
	if l.level <= LevelWarn {
		print(l.err, color.New(color.FgHiYellow), tag, f, args...)
	}
}

func (l *Logger) Error(tag string, f string, args ...interface{}) {
	print(l.err, color.New(color.FgHiRed), tag, f, args...)
}

func print(w io.Writer, tagColor *color.Color, tag, f string, args ...interface{}) {
	str := fmt.Sprintf(f, args...)
	for _, line := range strings.Split(str, "\n") {
		if tag == "" {
			fmt.Fprintf(w, "%s\n", color.WhiteString(line))
			continue
		}
		fmt.Fprintf(w, "%s  %s\n",
			tagColor.Sprint(tag),
			color.WhiteString(line))
	}
}

type ctxKey struct{}

// WithContext returns a copy of ctx carrying the logger.
func (l Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, &l)
}

// Ctx returns the logger stored in ctx.
// If there is none, a default logger writing to stdout/stderr is returned.
func Ctx(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	l := DefaultLogger()
	return &l
}

type Writer struct {
	pipe io.Writer
	tag  string
}

// InfoWriter returns a writer that logs every line written to it under tag.
func (l *Logger) InfoWriter(tag string) *Writer {
	return &Writer{
		pipe: l.err,
		tag:  tag,
	}
}

func (w *Writer) Write(data []byte) (n int, err error) {
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		fmt.Fprintf(w.pipe, "%s  %s\n",
			color.HiYellowString(w.tag),
			color.HiWhiteString(line))
	}
	return len(data), nil
}
