package fix

import "sync/atomic"

// SequenceNumbers tracks the per-direction FIX sequence counters. Outgoing
// holds the next value to stamp on a sent message, incoming the next value
// expected from the counterparty; both start at 1. Increments are the only
// mutation, so atomics are sufficient. The session shares one instance with
// the background receiver.
type SequenceNumbers struct {
	outgoing atomic.Uint64
	incoming atomic.Uint64
}

// NewSequenceNumbers creates counters starting at 1.
func NewSequenceNumbers() *SequenceNumbers {
	s := &SequenceNumbers{}
	s.outgoing.Store(1)
	s.incoming.Store(1)
	return s
}

// NextOutgoing returns the current outgoing value and advances it. The first
// call returns 1.
func (s *SequenceNumbers) NextOutgoing() uint64 {
	return s.outgoing.Add(1) - 1
}

// CurrentOutgoing returns the value the next NextOutgoing call would stamp.
func (s *SequenceNumbers) CurrentOutgoing() uint64 {
	return s.outgoing.Load()
}

// ExpectedIncoming returns the sequence number expected on the next inbound
// message.
func (s *SequenceNumbers) ExpectedIncoming() uint64 {
	return s.incoming.Load()
}

// IncrementIncoming advances the expected incoming counter by one.
func (s *SequenceNumbers) IncrementIncoming() {
	s.incoming.Add(1)
}

// SetIncoming hard-sets the expected incoming counter. Used when the
// counterparty sends a SequenceReset.
func (s *SequenceNumbers) SetIncoming(seq uint64) {
	s.incoming.Store(seq)
}

// Reset returns both counters to 1, as when a session renegotiates with
// ResetSeqNumFlag.
func (s *SequenceNumbers) Reset() {
	s.outgoing.Store(1)
	s.incoming.Store(1)
}
