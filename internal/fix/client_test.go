package fix

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedPeer plays the counterparty side of a session over an in-process
// pipe, encoding its replies with mirrored comp ids.
type scriptedPeer struct {
	t   *testing.T
	tr  *Transport
	enc *Encoder
	seq uint64
}

func newScriptedPeer(t *testing.T, conn net.Conn) *scriptedPeer {
	return &scriptedPeer{
		t:   t,
		tr:  NewTransport(conn, zap.NewNop()),
		enc: NewEncoder(Version44, "TARGET", "SENDER"),
	}
}

func (p *scriptedPeer) receive() *Message {
	p.tr.SetReadDeadline(time.Now().Add(2 * time.Second))
	msg, err := p.tr.Receive()
	assert.NoError(p.t, err)
	return msg
}

func (p *scriptedPeer) send(msgType MsgType, fields ...Field) {
	p.seq++
	assert.NoError(p.t, p.tr.Send(p.enc.Encode(msgType, p.seq, fields)))
}

// newClientPair wires a client to a scripted peer over net.Pipe.
func newClientPair(t *testing.T, cfg Config) (*Client, *scriptedPeer) {
	t.Helper()

	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})

	c, err := NewClient(cfg, Credentials{APIKey: "key-1", APISecret: "secret-1"}, zap.NewNop())
	require.NoError(t, err)
	c.dial = func(ctx context.Context, addr string) (*Transport, error) {
		return NewTransport(clientConn, zap.NewNop()), nil
	}
	return c, newScriptedPeer(t, serverConn)
}

// connectActive accepts the client's logon and confirms it.
func connectActive(t *testing.T, c *Client, peer *scriptedPeer) {
	t.Helper()

	go func() {
		logon := peer.receive()
		if logon == nil {
			return
		}
		code, _ := logon.MsgTypeCode()
		assert.Equal(peer.t, "A", code)
		key, _ := logon.Get(TagUsername)
		assert.Equal(peer.t, "key-1", key)
		peer.send(MsgTypeLogon, Field{TagHeartBtInt, "30"})
	}()

	require.NoError(t, c.Connect(context.Background()))
	require.Equal(t, StateActive, c.State())
}

// shutdown confirms the client's logout and waits for teardown.
func shutdown(t *testing.T, c *Client, peer *scriptedPeer) {
	t.Helper()

	go func() {
		for {
			msg, err := peer.tr.Receive()
			if err != nil {
				return
			}
			if code, _ := msg.MsgTypeCode(); code == "5" {
				peer.send(MsgTypeLogout)
				return
			}
		}
	}()

	require.NoError(t, c.Disconnect())
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClientConnectLogon(t *testing.T) {
	c, peer := newClientPair(t, testConfig())
	connectActive(t, c, peer)
	shutdown(t, c, peer)
}

func TestClientConnectRejected(t *testing.T) {
	c, peer := newClientPair(t, testConfig())

	go func() {
		peer.receive()
		peer.send(MsgTypeLogout, Field{TagText, "bad credentials"})
	}()

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Contains(t, err.Error(), "bad credentials")
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClientConnectLogonTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.LogonTimeout = 50 * time.Millisecond
	c, peer := newClientPair(t, cfg)

	// The peer reads the logon but never answers.
	go peer.receive()

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClientConnectWhileConnected(t *testing.T) {
	c, peer := newClientPair(t, testConfig())
	connectActive(t, c, peer)

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSession)

	shutdown(t, c, peer)
}

func TestClientSendOrderRequiresActiveSession(t *testing.T) {
	c, err := NewClient(testConfig(), Credentials{}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.SendOrder(NewMarketOrder("AAPL", SideBuy, 100))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSession)

	_, err = c.CancelOrder(NewCancelRequest("orig-1", "AAPL", SideBuy))
	assert.ErrorIs(t, err, ErrSession)

	_, err = c.RequestMarketData(NewMarketDataSnapshot("AAPL"))
	assert.ErrorIs(t, err, ErrSession)
}

func TestClientSendOrder(t *testing.T) {
	c, peer := newClientPair(t, testConfig())
	connectActive(t, c, peer)

	orderCh := make(chan *Message, 1)
	go func() {
		orderCh <- peer.receive()
	}()

	clOrdID, err := c.SendOrder(NewLimitOrder("AAPL", SideBuy, 100, 187.5))
	require.NoError(t, err)
	require.NotEmpty(t, clOrdID)

	order := <-orderCh
	require.NotNil(t, order)

	code, _ := order.MsgTypeCode()
	assert.Equal(t, "D", code)

	id, _ := order.Get(TagClOrdID)
	assert.Equal(t, clOrdID, id)
	symbol, _ := order.Get(TagSymbol)
	assert.Equal(t, "AAPL", symbol)
	qty, _ := order.Get(TagOrderQty)
	assert.Equal(t, "100", qty)
	price, _ := order.Get(TagPrice)
	assert.Equal(t, "187.5", price)
	side, _ := order.Get(TagSide)
	assert.Equal(t, "1", side)

	// Logon consumed sequence 1; the order carries 2.
	seq, ok := order.SeqNum()
	require.True(t, ok)
	assert.Equal(t, uint64(2), seq)

	shutdown(t, c, peer)
}

func TestClientAnswersTestRequest(t *testing.T) {
	c, peer := newClientPair(t, testConfig())
	connectActive(t, c, peer)

	peer.send(MsgTypeTestRequest, Field{TagTestReqID, "ping-7"})

	hb := peer.receive()
	require.NotNil(t, hb)
	code, _ := hb.MsgTypeCode()
	assert.Equal(t, "0", code)
	testReqID, _ := hb.Get(TagTestReqID)
	assert.Equal(t, "ping-7", testReqID)

	shutdown(t, c, peer)
}

func TestClientDeliversBusinessMessages(t *testing.T) {
	c, peer := newClientPair(t, testConfig())
	connectActive(t, c, peer)

	peer.send(MsgTypeExecutionReport,
		Field{TagOrderID, "ord-1"},
		Field{TagClOrdID, "cl-1"},
		Field{TagExecID, "exec-1"},
		Field{TagExecType, "0"},
		Field{TagOrdStatus, "0"},
		Field{TagSymbol, "AAPL"},
		Field{TagSide, "1"},
		Field{TagOrderQty, "100"},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := c.NextMessage(ctx)
	require.NoError(t, err)

	report, err := ParseExecutionReport(msg)
	require.NoError(t, err)
	assert.Equal(t, "exec-1", report.ExecID)
	assert.Equal(t, "cl-1", report.ClOrdID)
	assert.Equal(t, ExecTypeNew, report.ExecType)

	shutdown(t, c, peer)
}

func TestClientHeartbeat(t *testing.T) {
	cfg := testConfig()
	cfg.HeartbeatInterval = 50 * time.Millisecond
	c, peer := newClientPair(t, cfg)
	connectActive(t, c, peer)

	hb := peer.receive()
	require.NotNil(t, hb)
	code, _ := hb.MsgTypeCode()
	assert.Equal(t, "0", code)

	shutdown(t, c, peer)
}

func TestClientPeerInitiatedLogout(t *testing.T) {
	c, peer := newClientPair(t, testConfig())
	connectActive(t, c, peer)

	peer.send(MsgTypeLogout)

	require.Eventually(t, func() bool {
		return c.State() == StateDisconnected
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Disconnect())
}

func TestClientSequenceReset(t *testing.T) {
	c, peer := newClientPair(t, testConfig())
	connectActive(t, c, peer)

	peer.send(MsgTypeSequenceReset, Field{TagNewSeqNo, "20"})

	require.Eventually(t, func() bool {
		return c.session.Sequences().ExpectedIncoming() == 20
	}, 2*time.Second, 10*time.Millisecond)

	// Business traffic resumes at the reset value.
	peer.seq = 19
	peer.send(MsgTypeExecutionReport,
		Field{TagOrderID, "ord-2"},
		Field{TagClOrdID, "cl-2"},
		Field{TagExecID, "exec-2"},
		Field{TagExecType, "0"},
		Field{TagOrdStatus, "0"},
		Field{TagSymbol, "MSFT"},
		Field{TagSide, "2"},
		Field{TagOrderQty, "50"},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := c.NextMessage(ctx)
	require.NoError(t, err)
	execID, _ := msg.Get(TagExecID)
	assert.Equal(t, "exec-2", execID)

	shutdown(t, c, peer)
}

func TestClientGapDoesNotDeliver(t *testing.T) {
	c, peer := newClientPair(t, testConfig())
	connectActive(t, c, peer)

	// Skip ahead two sequence numbers; the report must be held back.
	peer.seq += 2
	peer.send(MsgTypeExecutionReport,
		Field{TagOrderID, "ord-3"},
		Field{TagClOrdID, "cl-3"},
		Field{TagExecID, "exec-3"},
		Field{TagExecType, "0"},
		Field{TagOrdStatus, "0"},
		Field{TagSymbol, "TSLA"},
		Field{TagSide, "1"},
		Field{TagOrderQty, "10"},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := c.NextMessage(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The gap never advanced the counter; realign so the logout exchange
	// validates.
	peer.seq = 1
	shutdown(t, c, peer)
}

func TestClientReconnectAfterConnectionDrop(t *testing.T) {
	cfg := testConfig()
	cfg.HeartbeatInterval = 100 * time.Millisecond

	c, err := NewClient(cfg, Credentials{}, zap.NewNop())
	require.NoError(t, err)

	conns := make(chan net.Conn, 2)
	c.dial = func(ctx context.Context, addr string) (*Transport, error) {
		return NewTransport(<-conns, zap.NewNop()), nil
	}

	client1, server1 := net.Pipe()
	conns <- client1
	peer1 := newScriptedPeer(t, server1)
	go func() {
		if peer1.receive() != nil {
			peer1.send(MsgTypeLogon, Field{TagHeartBtInt, "30"})
		}
	}()
	require.NoError(t, c.Connect(context.Background()))

	// Drop the connection out from under the receiver.
	server1.Close()
	require.Eventually(t, func() bool {
		return c.State() == StateDisconnected
	}, 2*time.Second, 10*time.Millisecond)

	client2, server2 := net.Pipe()
	t.Cleanup(func() { server2.Close() })
	conns <- client2
	peer2 := newScriptedPeer(t, server2)
	go func() {
		if peer2.receive() != nil {
			peer2.send(MsgTypeLogon, Field{TagHeartBtInt, "30"})
		}
	}()
	require.NoError(t, c.Connect(context.Background()))
	require.Equal(t, StateActive, c.State())

	// Only the new session's heartbeat loop may drive the new connection;
	// a surviving loop from the dropped session would double the rate.
	beats := 0
	deadline := time.Now().Add(450 * time.Millisecond)
	for time.Now().Before(deadline) {
		peer2.tr.SetReadDeadline(deadline)
		msg, err := peer2.tr.Receive()
		if err != nil {
			break
		}
		if code, _ := msg.MsgTypeCode(); code == "0" {
			beats++
		}
	}
	assert.GreaterOrEqual(t, beats, 2)
	assert.LessOrEqual(t, beats, 6)

	// Clear the expired deadline left by the counting loop so the shutdown
	// helper's reader can drain the pipe and confirm the logout.
	peer2.tr.SetReadDeadline(time.Time{})
	shutdown(t, c, peer2)
}

func TestClientDisconnectAfterConnectionDrop(t *testing.T) {
	c, peer := newClientPair(t, testConfig())
	connectActive(t, c, peer)

	peer.tr.Close()
	require.Eventually(t, func() bool {
		return c.State() == StateDisconnected
	}, 2*time.Second, 10*time.Millisecond)

	// Teardown after the receiver already shut the session down.
	require.NoError(t, c.Disconnect())
	assert.Equal(t, StateDisconnected, c.State())
}

func TestProcessMessageUnrecognizedTypeIsBusiness(t *testing.T) {
	c, err := NewClient(testConfig(), Credentials{}, zap.NewNop())
	require.NoError(t, err)

	msg := NewMessage()
	msg.Set(TagBeginString, "FIX.4.4")
	msg.Set(TagMsgType, "ZZ")

	business, err := c.ProcessMessage(msg)
	require.NoError(t, err)
	assert.True(t, business)
}

func TestClientConnectWithRetry(t *testing.T) {
	cfg := testConfig()
	cfg.ReconnectMaxAttempts = 5
	cfg.ReconnectDelay = 5 * time.Millisecond

	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})

	c, err := NewClient(cfg, Credentials{}, zap.NewNop())
	require.NoError(t, err)

	attempts := 0
	c.dial = func(ctx context.Context, addr string) (*Transport, error) {
		attempts++
		if attempts < 3 {
			return nil, ErrConnection
		}
		return NewTransport(clientConn, zap.NewNop()), nil
	}

	peer := newScriptedPeer(t, serverConn)
	go func() {
		if peer.receive() != nil {
			peer.send(MsgTypeLogon, Field{TagHeartBtInt, "30"})
		}
	}()

	require.NoError(t, c.ConnectWithRetry(context.Background()))
	assert.Equal(t, 3, attempts)
	assert.Equal(t, StateActive, c.State())

	shutdown(t, c, peer)
}

func TestClientConnectWithRetryExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.ReconnectMaxAttempts = 3
	cfg.ReconnectDelay = time.Millisecond

	c, err := NewClient(cfg, Credentials{}, zap.NewNop())
	require.NoError(t, err)

	attempts := 0
	c.dial = func(ctx context.Context, addr string) (*Transport, error) {
		attempts++
		return nil, ErrConnection
	}

	err = c.ConnectWithRetry(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClientConnectWithRetryStopsOnAuthFailure(t *testing.T) {
	cfg := testConfig()
	cfg.ReconnectMaxAttempts = 5
	cfg.ReconnectDelay = time.Millisecond

	c, peer := newClientPair(t, cfg)
	go func() {
		peer.receive()
		peer.send(MsgTypeLogout, Field{TagText, "unauthorized"})
	}()

	attempts := 0
	dial := c.dial
	c.dial = func(ctx context.Context, addr string) (*Transport, error) {
		attempts++
		return dial(ctx, addr)
	}

	err := c.ConnectWithRetry(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, 1, attempts)
}

func TestTrimFloat(t *testing.T) {
	assert.Equal(t, "100", formatQty(100))
	assert.Equal(t, "0.5", formatQty(0.5))
	assert.Equal(t, "187.5", formatPx(187.5))
	assert.Equal(t, "187.55", formatPx(187.55))
	assert.Equal(t, "0.00000001", formatPx(0.00000001))
}
