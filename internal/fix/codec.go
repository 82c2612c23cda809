package fix

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const sendingTimeLayout = "20060102-15:04:05.000"

// Field is a single tag=value pair. Encoding preserves field order.
type Field struct {
	Tag   int
	Value string
}

// Encoder builds wire-format FIX messages with the standard header and
// trailing checksum. Encoding cannot fail given valid inputs: the output is
// always well formed and its BodyLength is correct.
type Encoder struct {
	version      Version
	senderCompID string
	targetCompID string
}

// NewEncoder creates an encoder for one session's identifiers.
func NewEncoder(version Version, senderCompID, targetCompID string) *Encoder {
	return &Encoder{
		version:      version,
		senderCompID: senderCompID,
		targetCompID: targetCompID,
	}
}

// Encode builds a complete message: MsgType, CompIDs, sequence number and
// sending time, then the caller's fields in order, framed by BeginString,
// BodyLength and CheckSum.
func (e *Encoder) Encode(msgType MsgType, seqNum uint64, fields []Field) string {
	sendingTime := time.Now().UTC().Format(sendingTimeLayout)

	var body strings.Builder
	writeField(&body, TagMsgType, msgType.Code())
	writeField(&body, TagSenderCompID, e.senderCompID)
	writeField(&body, TagTargetCompID, e.targetCompID)
	writeField(&body, TagMsgSeqNum, strconv.FormatUint(seqNum, 10))
	writeField(&body, TagSendingTime, sendingTime)
	for _, f := range fields {
		writeField(&body, f.Tag, f.Value)
	}

	var header strings.Builder
	writeField(&header, TagBeginString, string(e.version))
	writeField(&header, TagBodyLength, strconv.Itoa(body.Len()))

	framed := header.String() + body.String()
	sum := checksum(framed)

	return fmt.Sprintf("%s%d=%03d%s", framed, TagCheckSum, sum, SOH)
}

func writeField(b *strings.Builder, tag int, value string) {
	b.WriteString(strconv.Itoa(tag))
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteString(SOH)
}

// checksum is the unsigned byte sum of data modulo 256.
func checksum(data string) int {
	sum := 0
	for i := 0; i < len(data); i++ {
		sum += int(data[i])
	}
	return sum % 256
}

// Decoder parses wire-format FIX messages.
type Decoder struct{}

// NewDecoder creates a decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode splits raw data into tag=value fields. It fails on a non-numeric
// tag and requires BeginString(8) and MsgType(35) to be present. Checksum
// validity is not enforced here; use ValidateChecksum for that.
func (d *Decoder) Decode(raw string) (*Message, error) {
	msg := NewMessage()
	msg.Raw = raw

	for _, field := range strings.Split(raw, SOH) {
		if field == "" {
			continue
		}
		parts := strings.SplitN(field, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: invalid field %q", ErrDecoding, field)
		}
		tag, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid tag %q", ErrDecoding, parts[0])
		}
		msg.Fields[tag] = parts[1]
	}

	if !msg.Has(TagBeginString) {
		return nil, fmt.Errorf("%w: missing BeginString", ErrInvalidMessage)
	}
	if !msg.Has(TagMsgType) {
		return nil, fmt.Errorf("%w: missing MsgType", ErrInvalidMessage)
	}

	return msg, nil
}

// ValidateChecksum recomputes the modulo-256 byte sum over everything
// preceding the CheckSum(10) field and compares it to the embedded value.
// It returns false rather than an error so callers decide whether a
// mismatch is fatal.
func (d *Decoder) ValidateChecksum(raw string) bool {
	pos := strings.LastIndex(raw, SOH+"10=")
	if pos < 0 || !strings.HasSuffix(raw, SOH) {
		return false
	}
	// The SOH terminating the previous field is part of the summed bytes.
	summed := raw[:pos+1]
	embedded := raw[pos+4 : len(raw)-1]

	// The value is exactly three zero-padded digits.
	if len(embedded) != 3 {
		return false
	}
	for i := 0; i < len(embedded); i++ {
		if embedded[i] < '0' || embedded[i] > '9' {
			return false
		}
	}

	want, err := strconv.Atoi(embedded)
	if err != nil {
		return false
	}
	return checksum(summed) == want
}
