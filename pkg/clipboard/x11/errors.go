package x11

import (
	"errors"
	"fmt"
)

var (
	// ErrSetup is returned when the XFixes capability or the selection
	// registration cannot be obtained. Nothing can be watched without it.
	ErrSetup = errors.New("x11 setup failed")

	// ErrProtocol marks a failed round trip during a single negotiation.
	ErrProtocol = errors.New("x11 protocol error")

	// ErrNoUsableTarget means the owner offered only meta targets.
	ErrNoUsableTarget = errors.New("no usable target offered")

	// ErrIncrementalTransfer means the owner answered with an INCR transfer,
	// which is not supported.
	ErrIncrementalTransfer = fmt.Errorf("%w: incremental transfer not supported", ErrProtocol)

	// ErrTransport means the connection to the display server is gone.
	ErrTransport = errors.New("x11 connection closed")
)

// Fatal reports whether err must stop the watch loop.
func Fatal(err error) bool {
	return errors.Is(err, ErrSetup) || errors.Is(err, ErrTransport)
}
