package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger prints leveled messages for one command run. All levels go to
// stderr so stdout can carry an artifact (export -o -).
type Logger struct {
	Verbose bool
	Debug   bool

	// Out overrides stderr. Nil means os.Stderr.
	Out io.Writer
}

func (l Logger) out() io.Writer {
	if l.Out != nil {
		return l.Out
	}
	return os.Stderr
}

func (l Logger) printf(prefix, msg string, args ...any) {
	fmt.Fprintf(l.out(), prefix+msg+"\n", args...)
}

func (l Logger) Infof(msg string, args ...any) {
	if l.Verbose || l.Debug {
		l.printf(color.GreenString("[info] "), msg, args...)
	}
}

func (l Logger) Debugf(msg string, args ...any) {
	if l.Debug {
		l.printf(color.CyanString("[debug] "), msg, args...)
	}
}

func (l Logger) Warnf(msg string, args ...any) {
	l.printf(color.YellowString("[warn] "), msg, args...)
}

func (l Logger) Errorf(msg string, args ...any) {
	l.printf(color.RedString("[error] "), msg, args...)
}

// ErrorfAndReturn logs the message at error level when debugging and
// returns it as an error for cobra to report.
func (l Logger) ErrorfAndReturn(msg string, args ...any) error {
	err := fmt.Errorf(msg, args...)
	if l.Debug {
		l.Errorf("%v", err)
	}
	return err
}
