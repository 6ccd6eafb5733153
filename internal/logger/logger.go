package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

// Level is a logging threshold. Printers below the active level are no-ops.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// Levels lists the accepted verbosity names in ascending order.
var Levels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

// ParseLevel maps a verbosity name (case-insensitive) to a Level.
func ParseLevel(name string) (Level, error) {
	for i, l := range Levels {
		if strings.EqualFold(name, l) {
			return Level(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown verbosity level %q (want one of %s)", name, strings.Join(Levels, ", "))
}

func (l Level) String() string {
	if l < LevelDebug || l > LevelCritical {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return Levels[l]
}

// Colorized printing functions for each level, behaving like fmt.Printf.
// They are reassigned by Init and SetOutput; until then everything prints at INFO.
var (
	// Debug prints diagnostic detail in cyan.
	Debug func(format string, a ...any)
	// Info prints progress in green.
	Info func(format string, a ...any)
	// Warn prints recoverable problems in bright magenta.
	Warn func(format string, a ...any)
	// Error prints failures in red.
	Error func(format string, a ...any)
	// Critical prints run-ending failures in bold red.
	Critical func(format string, a ...any)
)

var (
	active Level     = LevelInfo
	output io.Writer = color.Output
)

func init() {
	build()
}

// Init sets the threshold from a verbosity name such as "DEBUG" or "warning".
func Init(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	active = lvl
	build()
	return nil
}

// SetOutput redirects every printer to w. Tests use it to capture log lines.
func SetOutput(w io.Writer) {
	output = w
	build()
}

// Enabled reports whether messages at lvl are printed.
func Enabled(lvl Level) bool {
	return lvl >= active
}

func build() {
	Debug = printer(LevelDebug, color.New(color.FgCyan))
	Info = printer(LevelInfo, color.New(color.FgGreen))
	Warn = printer(LevelWarning, color.New(color.FgHiMagenta))
	Error = printer(LevelError, color.New(color.FgRed))
	Critical = printer(LevelCritical, color.New(color.FgRed, color.Bold))
}

func printer(lvl Level, c *color.Color) func(format string, a ...any) {
	if !Enabled(lvl) {
		return func(format string, a ...any) {}
	}
	fprintf := c.FprintfFunc()
	return func(format string, a ...any) {
		fprintf(output, format, a...)
	}
}
