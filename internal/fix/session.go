package fix

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
)

// State is the session connection state. Disconnected is both the initial
// state and re-enterable; there is no terminal state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateLoggingOn
	StateActive
	StateLoggingOut
	// StateReconnecting is a transient value used only by the reconnect
	// wrapper, never by the session itself.
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateLoggingOn:
		return "LoggingOn"
	case StateActive:
		return "Active"
	case StateLoggingOut:
		return "LoggingOut"
	case StateReconnecting:
		return "Reconnecting"
	}
	return "Unknown"
}

// Session builds protocol-level messages with correct headers, owns the
// connection state and validates incoming sequence numbers. It never retries
// or reconnects; all retry policy lives in the Client.
type Session struct {
	cfg    Config
	creds  Credentials
	state  atomic.Int32
	seq    *SequenceNumbers
	enc    *Encoder
	logger *zap.Logger
}

// NewSession creates a session in the Disconnected state.
func NewSession(cfg Config, creds Credentials, logger *zap.Logger) *Session {
	return &Session{
		cfg:    cfg,
		creds:  creds,
		seq:    NewSequenceNumbers(),
		enc:    NewEncoder(cfg.Version, cfg.SenderCompID, cfg.TargetCompID),
		logger: logger,
	}
}

// State returns the current connection state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// SetState transitions the connection state. Every transition is logged.
func (s *Session) SetState(state State) {
	old := State(s.state.Swap(int32(state)))
	if old != state {
		s.logger.Info("session state changed",
			zap.Stringer("from", old),
			zap.Stringer("to", state),
		)
	}
}

// Sequences returns the shared sequence counters.
func (s *Session) Sequences() *SequenceNumbers {
	return s.seq
}

// CreateLogon builds the Logon message with EncryptMethod=0, the heartbeat
// interval, the credentials and optionally ResetSeqNumFlag=Y.
func (s *Session) CreateLogon() string {
	fields := []Field{
		{TagEncryptMethod, "0"},
		{TagHeartBtInt, strconv.Itoa(int(s.cfg.HeartbeatInterval.Seconds()))},
	}
	if s.cfg.ResetOnLogon {
		fields = append(fields, Field{TagResetSeqNumFlag, "Y"})
	}
	if s.creds.APIKey != "" {
		fields = append(fields, Field{TagUsername, s.creds.APIKey})
	}
	if s.creds.APISecret != "" {
		fields = append(fields, Field{TagPassword, s.creds.APISecret})
	}
	return s.enc.Encode(MsgTypeLogon, s.seq.NextOutgoing(), fields)
}

// CreateLogout builds the Logout message with optional free text.
func (s *Session) CreateLogout(text string) string {
	var fields []Field
	if text != "" {
		fields = append(fields, Field{TagText, text})
	}
	return s.enc.Encode(MsgTypeLogout, s.seq.NextOutgoing(), fields)
}

// CreateHeartbeat builds a Heartbeat, echoing a TestReqID when replying to a
// TestRequest.
func (s *Session) CreateHeartbeat(testReqID string) string {
	var fields []Field
	if testReqID != "" {
		fields = append(fields, Field{TagTestReqID, testReqID})
	}
	return s.enc.Encode(MsgTypeHeartbeat, s.seq.NextOutgoing(), fields)
}

// CreateTestRequest builds a TestRequest demanding a Heartbeat reply.
func (s *Session) CreateTestRequest(testReqID string) string {
	fields := []Field{{TagTestReqID, testReqID}}
	return s.enc.Encode(MsgTypeTestRequest, s.seq.NextOutgoing(), fields)
}

// CreateResendRequest builds a ResendRequest for the given sequence range.
func (s *Session) CreateResendRequest(beginSeq, endSeq uint64) string {
	fields := []Field{
		{TagBeginSeqNo, strconv.FormatUint(beginSeq, 10)},
		{TagEndSeqNo, strconv.FormatUint(endSeq, 10)},
	}
	return s.enc.Encode(MsgTypeResendRequest, s.seq.NextOutgoing(), fields)
}

// EncodeMessage stamps the next outgoing sequence number on a business
// message. This is the general entry point used by the client.
func (s *Session) EncodeMessage(msgType MsgType, fields []Field) string {
	return s.enc.Encode(msgType, s.seq.NextOutgoing(), fields)
}

// ValidateSequence checks the MsgSeqNum of an inbound message against the
// expected incoming counter. An old sequence number is logged and tolerated;
// a gap returns a SequenceGapError without advancing the counter; a match
// advances it by one.
func (s *Session) ValidateSequence(msg *Message) error {
	raw, ok := msg.Get(TagMsgSeqNum)
	if !ok {
		return nil
	}
	seq, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid sequence number %q", ErrDecoding, raw)
	}

	expected := s.seq.ExpectedIncoming()
	switch {
	case seq < expected:
		s.logger.Warn("received old message",
			zap.Uint64("seq", seq),
			zap.Uint64("expected", expected),
		)
	case seq > expected:
		return &SequenceGapError{Expected: expected, Actual: seq}
	default:
		s.seq.IncrementIncoming()
	}
	return nil
}
