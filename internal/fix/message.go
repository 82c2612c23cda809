package fix

import (
	"strconv"
	"strings"
)

// Message is a decoded FIX message: an unordered tag to value map plus the
// raw buffer it was decoded from. Messages are constructed by the decoder and
// consumed immediately by the caller.
type Message struct {
	Fields map[int]string
	Raw    string
}

// NewMessage creates an empty message.
func NewMessage() *Message {
	return &Message{Fields: make(map[int]string)}
}

// Get returns the value for a tag. Absent fields are reported through the
// second return value, never as an empty string.
func (m *Message) Get(tag int) (string, bool) {
	v, ok := m.Fields[tag]
	return v, ok
}

// Has reports whether a tag is present.
func (m *Message) Has(tag int) bool {
	_, ok := m.Fields[tag]
	return ok
}

// Set stores a field value.
func (m *Message) Set(tag int, value string) {
	m.Fields[tag] = value
}

// MsgTypeCode returns the raw MsgType(35) value.
func (m *Message) MsgTypeCode() (string, bool) {
	return m.Get(TagMsgType)
}

// MsgType returns the parsed message type.
func (m *Message) MsgType() (MsgType, bool) {
	code, ok := m.Get(TagMsgType)
	if !ok {
		return MsgTypeUnknown, false
	}
	return MsgTypeFromCode(code)
}

// SeqNum returns the MsgSeqNum(34) value.
func (m *Message) SeqNum() (uint64, bool) {
	v, ok := m.Get(TagMsgSeqNum)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float returns a tag value parsed as a float64.
func (m *Message) Float(tag int) (float64, bool) {
	v, ok := m.Get(tag)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String renders the raw message with SOH replaced by '|' for logs.
func (m *Message) String() string {
	return strings.ReplaceAll(m.Raw, SOH, "|")
}
