package fix

import (
	"errors"
	"fmt"
)

// Error categories returned by the client. Callers match them with errors.Is.
var (
	// ErrConnection covers I/O and stream failures on the FIX transport.
	ErrConnection = errors.New("fix: connection error")
	// ErrSession is returned when an operation is invalid for the current
	// session state, e.g. sending an order while not active.
	ErrSession = errors.New("fix: session error")
	// ErrDecoding is returned for malformed tags or unparseable numeric fields.
	ErrDecoding = errors.New("fix: decoding error")
	// ErrInvalidMessage is returned when a mandatory field is missing.
	ErrInvalidMessage = errors.New("fix: invalid message")
	// ErrAuthentication is returned when the counterparty rejects our logon.
	ErrAuthentication = errors.New("fix: authentication error")
	// ErrTimeout is returned when the counterparty does not respond in time.
	ErrTimeout = errors.New("fix: timeout")
	// ErrConfiguration is returned for invalid session configuration.
	ErrConfiguration = errors.New("fix: configuration error")
)

// SequenceGapError reports an incoming message whose sequence number is ahead
// of the expected one. Callers are expected to address the gap with a resend
// request; the session does not do that automatically.
type SequenceGapError struct {
	Expected uint64
	Actual   uint64
}

func (e *SequenceGapError) Error() string {
	return fmt.Sprintf("fix: sequence gap: expected %d, got %d", e.Expected, e.Actual)
}
