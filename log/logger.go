// Package log provides named, leveled loggers on top of go-logging. All
// loggers share one process-wide backend configured with SetSink, SetLevel
// and SetFormat.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var levels = map[Level]logging.Level{
	Debug:   logging.DEBUG,
	Info:    logging.INFO,
	Notice:  logging.NOTICE,
	Warning: logging.WARNING,
	Error:   logging.ERROR,
}

// Named output formats accepted by ParseFormat. Any other string containing
// a %{...} verb is used as a go-logging pattern.
const (
	FormatColor = "color"
	FormatPlain = "plain"
	FormatShort = "short"
)

var formats = map[string]string{
	FormatColor: `%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
	FormatPlain: `[%{time:15:04:05.000}] [%{module}] [%{level}] %{message}`,
	FormatShort: `%{level:.4s} %{module}: %{message}`,
}

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// backend holds the pieces the shared go-logging backend is rebuilt from
// whenever one of them changes.
var backend struct {
	sync.Mutex
	sink      io.Writer
	formatter logging.Formatter
	level     logging.Level
	leveled   logging.LeveledBackend
}

// Create a new named logger.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Override the backend output sink. Level and format are preserved.
func SetSink(sink io.Writer) {
	backend.Lock()
	defer backend.Unlock()
	backend.sink = sink
	rebuild()
}

// Set logger verbosity.
func SetLevel(level Level) {
	backend.Lock()
	defer backend.Unlock()
	backend.level = levels[level]
	backend.leveled.SetLevel(backend.level, "")
}

// SetFormat switches the line format; see ParseFormat for accepted values.
func SetFormat(name string) error {
	formatter, err := ParseFormat(name)
	if err != nil {
		return err
	}
	backend.Lock()
	defer backend.Unlock()
	backend.formatter = formatter
	rebuild()
	return nil
}

// ParseFormat resolves a named format or a custom go-logging pattern. The
// empty name selects FormatColor.
func ParseFormat(name string) (logging.Formatter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = FormatColor
	}
	pattern, ok := formats[key]
	if !ok {
		if !strings.Contains(name, "%{") {
			return nil, fmt.Errorf("log: unknown format %q", name)
		}
		pattern = name
	}
	formatter, err := logging.NewStringFormatter(pattern)
	if err != nil {
		return nil, fmt.Errorf("log: bad format %q: %w", name, err)
	}
	return formatter, nil
}

// ParseLevel maps a level name (debug, info, notice, warning, error) to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return Debug, nil
	case "info", "":
		return Info, nil
	case "notice":
		return Notice, nil
	case "warning", "warn":
		return Warning, nil
	case "error":
		return Error, nil
	}
	return Info, fmt.Errorf("log: unknown level %q", name)
}

// rebuild must be called with the backend lock held.
func rebuild() {
	out := logging.NewLogBackend(backend.sink, "", 0)
	backend.leveled = logging.AddModuleLevel(logging.NewBackendFormatter(out, backend.formatter))
	backend.leveled.SetLevel(backend.level, "")
	logging.SetBackend(backend.leveled)
}

func init() {
	backend.sink = os.Stderr
	backend.formatter = logging.MustStringFormatter(formats[FormatColor])
	backend.level = logging.INFO
	rebuild()
}
