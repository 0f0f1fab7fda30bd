// Package logger builds Printf-style loggers for libraries that do not take slog.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// New returns a stderr logger tagged with the component name.
func New(component string) *log.Logger {
	return NewWithWriter(os.Stderr, component)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, component string) *log.Logger {
	prefix := fmt.Sprintf("[newsdesk/%s] ", component)
	return log.New(w, prefix, log.LstdFlags|log.Lmsgprefix)
}
