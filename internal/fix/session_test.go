package fix

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SenderCompID = "SENDER"
	cfg.TargetCompID = "TARGET"
	cfg.Host = "127.0.0.1"
	return cfg
}

func newTestSession(t *testing.T, cfg Config, creds Credentials) *Session {
	t.Helper()
	return NewSession(cfg, creds, zap.NewNop())
}

func TestSessionStateTransitions(t *testing.T) {
	s := newTestSession(t, testConfig(), Credentials{})

	assert.Equal(t, StateDisconnected, s.State())
	s.SetState(StateConnecting)
	assert.Equal(t, StateConnecting, s.State())
	s.SetState(StateActive)
	assert.Equal(t, StateActive, s.State())
	s.SetState(StateDisconnected)
	assert.Equal(t, StateDisconnected, s.State())
}

func TestCreateLogon(t *testing.T) {
	creds := Credentials{APIKey: "key-1", APISecret: "secret-1"}
	s := newTestSession(t, testConfig(), creds)
	logon := s.CreateLogon()

	assert.Contains(t, logon, "35=A"+SOH)
	assert.Contains(t, logon, "98=0"+SOH)
	assert.Contains(t, logon, "108=30"+SOH)
	assert.Contains(t, logon, "553=key-1"+SOH)
	assert.Contains(t, logon, "554=secret-1"+SOH)
	assert.NotContains(t, logon, "141=Y"+SOH)
	assert.Contains(t, logon, "34=1"+SOH)
}

func TestCreateLogonResetFlag(t *testing.T) {
	cfg := testConfig()
	cfg.ResetOnLogon = true
	s := newTestSession(t, cfg, Credentials{})

	assert.Contains(t, s.CreateLogon(), "141=Y"+SOH)
}

func TestCreateLogout(t *testing.T) {
	s := newTestSession(t, testConfig(), Credentials{})

	plain := s.CreateLogout("")
	assert.Contains(t, plain, "35=5"+SOH)
	assert.NotContains(t, plain, "58=")

	withText := s.CreateLogout("bye")
	assert.Contains(t, withText, "58=bye"+SOH)
}

func TestCreateHeartbeat(t *testing.T) {
	s := newTestSession(t, testConfig(), Credentials{})

	hb := s.CreateHeartbeat("TEST123")
	assert.Contains(t, hb, "35=0"+SOH)
	assert.Contains(t, hb, "112=TEST123"+SOH)

	plain := s.CreateHeartbeat("")
	assert.NotContains(t, plain, "112=")
}

func TestCreateTestRequest(t *testing.T) {
	s := newTestSession(t, testConfig(), Credentials{})
	tr := s.CreateTestRequest("ping-1")

	assert.Contains(t, tr, "35=1"+SOH)
	assert.Contains(t, tr, "112=ping-1"+SOH)
}

func TestCreateResendRequest(t *testing.T) {
	s := newTestSession(t, testConfig(), Credentials{})
	rr := s.CreateResendRequest(5, 9)

	assert.Contains(t, rr, "35=2"+SOH)
	assert.Contains(t, rr, "7=5"+SOH)
	assert.Contains(t, rr, "16=9"+SOH)
}

func TestEncodeMessageStampsSequence(t *testing.T) {
	s := newTestSession(t, testConfig(), Credentials{})
	dec := NewDecoder()

	for want := uint64(1); want <= 5; want++ {
		encoded := s.EncodeMessage(MsgTypeNewOrderSingle, []Field{{TagSymbol, "AAPL"}})
		msg, err := dec.Decode(encoded)
		require.NoError(t, err)
		seq, ok := msg.SeqNum()
		require.True(t, ok)
		assert.Equal(t, want, seq)
	}
}

func inboundMessage(seq uint64) *Message {
	msg := NewMessage()
	msg.Set(TagBeginString, "FIX.4.4")
	msg.Set(TagMsgType, "8")
	msg.Set(TagMsgSeqNum, strconv.FormatUint(seq, 10))
	return msg
}

func TestValidateSequenceInOrder(t *testing.T) {
	s := newTestSession(t, testConfig(), Credentials{})

	require.NoError(t, s.ValidateSequence(inboundMessage(1)))
	require.NoError(t, s.ValidateSequence(inboundMessage(2)))
	assert.Equal(t, uint64(3), s.Sequences().ExpectedIncoming())
}

func TestValidateSequenceGap(t *testing.T) {
	s := newTestSession(t, testConfig(), Credentials{})
	s.Sequences().SetIncoming(5)

	err := s.ValidateSequence(inboundMessage(7))
	require.Error(t, err)

	var gap *SequenceGapError
	require.True(t, errors.As(err, &gap))
	assert.Equal(t, uint64(5), gap.Expected)
	assert.Equal(t, uint64(7), gap.Actual)

	// A gap never advances the counter.
	assert.Equal(t, uint64(5), s.Sequences().ExpectedIncoming())

	// The in-order message still validates afterwards.
	require.NoError(t, s.ValidateSequence(inboundMessage(5)))
	assert.Equal(t, uint64(6), s.Sequences().ExpectedIncoming())
}

func TestValidateSequenceOldMessage(t *testing.T) {
	s := newTestSession(t, testConfig(), Credentials{})
	s.Sequences().SetIncoming(5)

	// Duplicates are tolerated and do not advance the counter.
	require.NoError(t, s.ValidateSequence(inboundMessage(3)))
	assert.Equal(t, uint64(5), s.Sequences().ExpectedIncoming())
}

func TestValidateSequenceMalformed(t *testing.T) {
	s := newTestSession(t, testConfig(), Credentials{})

	msg := inboundMessage(1)
	msg.Set(TagMsgSeqNum, "not-a-number")
	err := s.ValidateSequence(msg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecoding)
}

func TestValidateSequenceAbsent(t *testing.T) {
	s := newTestSession(t, testConfig(), Credentials{})

	msg := NewMessage()
	msg.Set(TagBeginString, "FIX.4.4")
	msg.Set(TagMsgType, "0")
	require.NoError(t, s.ValidateSequence(msg))
	assert.Equal(t, uint64(1), s.Sequences().ExpectedIncoming())
}
