// Package logging provides the leveled loggers used by the daemon. Levels
// follow the usual DEBUG=10 .. ERROR=40 numbering. The LOG_LEVEL environment
// variable reaches them through the daemon configuration.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	DEBUG   Level = 10
	INFO    Level = 20
	WARNING Level = 30
	ERROR   Level = 40
)

var levelNames = map[Level]string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARNING",
	ERROR:   "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func ParseLevel(s string) (Level, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return INFO, fmt.Errorf("unrecognized log level %q", s)
}

const flags = log.Ldate | log.Ltime | log.Lmicroseconds | log.Lmsgprefix

// File describes an optional rotated log file.
type File struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Logger struct {
	level Level
	file  *lumberjack.Logger

	debug   *log.Logger
	info    *log.Logger
	warning *log.Logger
	err     *log.Logger
}

// New writes every message at or above level to w.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		level:   level,
		debug:   log.New(w, "DEBUG ", flags),
		info:    log.New(w, "INFO ", flags),
		warning: log.New(w, "WARNING ", flags),
		err:     log.New(w, "ERROR ", flags),
	}
}

// Open logs to stderr, and additionally to a rotated file when f.Path is set.
func Open(level Level, f File) *Logger {
	if f.Path == "" {
		return New(os.Stderr, level)
	}
	file := &lumberjack.Logger{
		Filename:   f.Path,
		MaxSize:    f.MaxSizeMB,
		MaxBackups: f.MaxBackups,
		MaxAge:     f.MaxAgeDays,
		Compress:   f.Compress,
	}
	l := New(io.MultiWriter(os.Stderr, file), level)
	l.file = file
	return l
}

func (l *Logger) Level() Level { return l.level }

func (l *Logger) Debugf(format string, v ...any) {
	if l.level <= DEBUG {
		l.debug.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Infof(format string, v ...any) {
	if l.level <= INFO {
		l.info.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Warningf(format string, v ...any) {
	if l.level <= WARNING {
		l.warning.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Errorf(format string, v ...any) {
	l.err.Output(2, fmt.Sprintf(format, v...))
}

// Std returns a plain logger at INFO, for libraries that take a *log.Logger.
// It discards everything when the level is above INFO. The choice is made
// once, at the call: the level is fixed for the life of a Logger, so set it
// through New or Open before handing Std to a library.
func (l *Logger) Std() *log.Logger {
	if l.level > INFO {
		return log.New(io.Discard, "", 0)
	}
	return l.info
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
