package kuma

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two transient connection failure classes. A call
// that fails with either is worth exactly one reconnect-and-retry; everything
// else propagates to the caller.
var (
	// ErrBadChannel means the underlying socket is closed or was never
	// connected when a call was attempted.
	ErrBadChannel = errors.New("kuma: socket channel not connected")

	// ErrAckTimeout means the server did not acknowledge a call within the
	// configured timeout.
	ErrAckTimeout = errors.New("kuma: timed out waiting for server ack")

	// ErrIDNotFound means a create call succeeded but no id could be
	// extracted from the response by any known strategy.
	ErrIDNotFound = errors.New("kuma: no id found in server response")
)

// IsTransient reports whether err is one of the connection failure classes
// that justify a one-shot reconnect and retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrBadChannel) || errors.Is(err, ErrAckTimeout)
}

// ServerError is a rejection returned by the Uptime Kuma server itself
// (ack with ok=false). It is not transient: retrying the same payload
// would fail the same way.
type ServerError struct {
	Op  string
	Msg string
}

func (e *ServerError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("kuma: %s rejected by server", e.Op)
	}
	return fmt.Sprintf("kuma: %s rejected by server: %s", e.Op, e.Msg)
}
