package fix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// readChunkSize is the transport read granularity. The receive buffer may
// grow to at most four times this before the peer is considered broken.
const readChunkSize = 8192

// Transport frames a reliable byte stream into discrete FIX messages. The
// frame boundary is the CheckSum(10) field followed by its value and the
// field delimiter; newline framing is never assumed.
type Transport struct {
	conn    net.Conn
	dec     *Decoder
	logger  *zap.Logger
	writeMu sync.Mutex
	readMu  sync.Mutex
	buf     []byte
	chunk   []byte
	closed  sync.Once
}

// NewTransport wraps an established byte stream.
func NewTransport(conn net.Conn, logger *zap.Logger) *Transport {
	return &Transport{
		conn:   conn,
		dec:    NewDecoder(),
		logger: logger,
		buf:    make([]byte, 0, readChunkSize),
		chunk:  make([]byte, readChunkSize),
	}
}

// Dial opens a TCP connection to the counterparty and wraps it.
func Dial(ctx context.Context, addr string, logger *zap.Logger) (*Transport, error) {
	logger.Info("connecting to fix endpoint", zap.String("addr", addr))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, addr, err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(true); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: set nodelay: %v", ErrConnection, err)
		}
	}

	logger.Info("connected to fix endpoint", zap.String("addr", addr))
	return NewTransport(conn, logger), nil
}

// Send writes a full encoded message to the stream.
func (t *Transport) Send(message string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := io.WriteString(t.conn, message); err != nil {
		return fmt.Errorf("%w: write: %v", ErrConnection, err)
	}
	t.logger.Debug("sent fix message", zap.Int("bytes", len(message)))
	return nil
}

// Receive blocks until one complete message has been framed, decodes it and
// leaves any remainder buffered for the next call. It fails with a
// connection error on EOF and with a decoding error if the buffer exceeds
// four read chunks without a frame boundary.
func (t *Transport) Receive() (*Message, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	for {
		if end := frameEnd(t.buf); end > 0 {
			raw := string(t.buf[:end])
			t.buf = append(t.buf[:0], t.buf[end:]...)
			t.logger.Debug("received fix message", zap.Int("bytes", len(raw)))
			return t.dec.Decode(raw)
		}

		if len(t.buf) > readChunkSize*4 {
			t.buf = t.buf[:0]
			return nil, fmt.Errorf("%w: no message boundary within buffer limit", ErrDecoding)
		}

		n, err := t.conn.Read(t.chunk)
		if n > 0 {
			t.buf = append(t.buf, t.chunk[:n]...)
			continue
		}
		if err == io.EOF {
			return nil, fmt.Errorf("%w: connection closed", ErrConnection)
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return nil, fmt.Errorf("%w: read deadline exceeded", ErrTimeout)
			}
			return nil, fmt.Errorf("%w: read: %v", ErrConnection, err)
		}
	}
}

// frameEnd returns the index one past the end of the first complete message
// in buf, or -1 if no complete message is buffered yet.
func frameEnd(buf []byte) int {
	checksumAt := -1
	if bytes.HasPrefix(buf, []byte("10=")) {
		checksumAt = 0
	} else if i := bytes.Index(buf, []byte(SOH+"10=")); i >= 0 {
		checksumAt = i + 1
	}
	if checksumAt < 0 {
		return -1
	}
	rest := buf[checksumAt+3:]
	j := bytes.IndexByte(rest, 0x01)
	if j < 0 {
		return -1
	}
	return checksumAt + 3 + j + 1
}

// SetReadDeadline bounds the next Receive call.
func (t *Transport) SetReadDeadline(deadline time.Time) error {
	return t.conn.SetReadDeadline(deadline)
}

// Close shuts down the write half when the stream supports it and then
// closes the connection, unblocking any pending Receive. Idempotent and
// best-effort.
func (t *Transport) Close() error {
	var err error
	t.closed.Do(func() {
		if tcp, ok := t.conn.(*net.TCPConn); ok {
			_ = tcp.CloseWrite()
		}
		err = t.conn.Close()
	})
	return err
}
