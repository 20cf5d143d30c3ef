// Package message provides interfaces and a base implementation for
// extended reporting on top of [log.Logger].
package message

import (
	"errors"
	"log"
	"sync/atomic"
)

// Error is an error with a user-facing message.
type Error interface {
	// Message returns a user-facing error message.
	Message() string

	error
}

// GetMessage returns whether an error implements [Error], and the message if it does.
func GetMessage(err error) (string, bool) {
	var e Error
	if !errors.As(err, &e) || e == nil {
		return "", false
	}
	return e.Message(), true
}

// Msg is used for package-wide verbose logging.
type Msg interface {
	// GetLogger returns the address of the underlying [log.Logger].
	GetLogger() *log.Logger

	// IsVerbose atomically loads and returns whether [Msg] has verbose logging enabled.
	IsVerbose() bool
	// SwapVerbose atomically stores a new verbose state and returns the previous value held by [Msg].
	SwapVerbose(verbose bool) bool
	// Verbose passes its argument to the Println method of the underlying [log.Logger] if IsVerbose returns true.
	Verbose(v ...any)
	// Verbosef passes its argument to the Printf method of the underlying [log.Logger] if IsVerbose returns true.
	Verbosef(format string, v ...any)
}

// defaultMsg is the default implementation of the [Msg] interface.
type defaultMsg struct {
	verbose atomic.Bool
	logger  *log.Logger
}

var _ Msg = new(defaultMsg)

// New initialises a downstream [log.Logger] for a new [Msg].
// A nil logger is replaced with one writing to the standard logger's output.
func New(logger *log.Logger) Msg {
	if logger == nil {
		logger = log.New(log.Writer(), "systemd: ", 0)
	}
	return &defaultMsg{logger: logger}
}

func (msg *defaultMsg) GetLogger() *log.Logger { return msg.logger }

func (msg *defaultMsg) IsVerbose() bool { return msg.verbose.Load() }
func (msg *defaultMsg) SwapVerbose(verbose bool) bool {
	return msg.verbose.Swap(verbose)
}
func (msg *defaultMsg) Verbose(v ...any) {
	if msg.verbose.Load() {
		msg.logger.Println(v...)
	}
}
func (msg *defaultMsg) Verbosef(format string, v ...any) {
	if msg.verbose.Load() {
		msg.logger.Printf(format, v...)
	}
}
