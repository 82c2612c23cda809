package fix

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// messageBuffer bounds the inbound business-message channel.
const messageBuffer = 256

// maxReconnectDelay caps the exponential backoff of ConnectWithRetry.
const maxReconnectDelay = 30 * time.Second

// Client owns the session and transport, drives the logon and logout
// handshakes, supervises the heartbeat and receiver goroutines and exposes
// the state-gated order-entry and market-data operations. Business messages
// received while active are delivered in arrival order via NextMessage.
type Client struct {
	cfg     Config
	creds   Credentials
	session *Session
	logger  *zap.Logger

	// dial is overridable so tests can connect to an in-process peer.
	dial func(ctx context.Context, addr string) (*Transport, error)

	mu        sync.Mutex
	transport *Transport
	msgCh     chan *Message
	done      chan struct{}
	stopOnce  *sync.Once
	logoutCh  chan struct{}
	wg        sync.WaitGroup
}

// NewClient creates a disconnected client.
func NewClient(cfg Config, creds Credentials, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:     cfg,
		creds:   creds,
		session: NewSession(cfg, creds, logger),
		logger:  logger,
		dial: func(ctx context.Context, addr string) (*Transport, error) {
			return Dial(ctx, addr, logger)
		},
	}, nil
}

// State returns the current session state.
func (c *Client) State() State {
	return c.session.State()
}

// Connect opens the transport, performs the logon handshake and, on success,
// starts the heartbeat and receiver goroutines. A Logout reply is an
// authentication failure; no reply within the logon timeout is a timeout. In
// both failure cases the transport is closed and the state is Disconnected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st := c.session.State(); st != StateDisconnected && st != StateReconnecting {
		return fmt.Errorf("%w: connect while %s", ErrSession, st)
	}

	// A previous session's goroutines may still be winding down after a
	// connection drop; reap them before the channels are reused.
	c.wg.Wait()

	c.session.SetState(StateConnecting)

	transport, err := c.dial(ctx, c.cfg.Addr())
	if err != nil {
		c.session.SetState(StateDisconnected)
		return err
	}

	// Sequence numbers are not persisted across connections; every session
	// starts from 1.
	c.session.Sequences().Reset()

	c.session.SetState(StateLoggingOn)
	if err := transport.Send(c.session.CreateLogon()); err != nil {
		transport.Close()
		c.session.SetState(StateDisconnected)
		return err
	}
	c.logRaw("sent logon")

	if err := transport.SetReadDeadline(time.Now().Add(c.cfg.LogonTimeout)); err != nil {
		transport.Close()
		c.session.SetState(StateDisconnected)
		return fmt.Errorf("%w: set deadline: %v", ErrConnection, err)
	}

	reply, err := transport.Receive()
	if err != nil {
		transport.Close()
		c.session.SetState(StateDisconnected)
		if errors.Is(err, ErrTimeout) {
			return fmt.Errorf("%w: no logon reply within %s", ErrTimeout, c.cfg.LogonTimeout)
		}
		return err
	}
	if err := transport.SetReadDeadline(time.Time{}); err != nil {
		transport.Close()
		c.session.SetState(StateDisconnected)
		return fmt.Errorf("%w: clear deadline: %v", ErrConnection, err)
	}

	if err := c.session.ValidateSequence(reply); err != nil {
		var gap *SequenceGapError
		if !errors.As(err, &gap) {
			transport.Close()
			c.session.SetState(StateDisconnected)
			return err
		}
		c.logger.Warn("sequence gap in logon reply",
			zap.Uint64("expected", gap.Expected),
			zap.Uint64("actual", gap.Actual),
		)
	}

	msgType, _ := reply.MsgType()
	switch msgType {
	case MsgTypeLogon:
		c.transport = transport
		c.msgCh = make(chan *Message, messageBuffer)
		c.done = make(chan struct{})
		c.stopOnce = new(sync.Once)
		c.logoutCh = make(chan struct{}, 1)
		c.session.SetState(StateActive)
		c.logger.Info("fix session established",
			zap.String("sender", c.cfg.SenderCompID),
			zap.String("target", c.cfg.TargetCompID),
		)
		c.wg.Add(2)
		go c.heartbeatLoop(transport, c.done)
		go c.receiveLoop(transport, c.done, c.stopOnce)
		return nil
	case MsgTypeLogout:
		transport.Close()
		c.session.SetState(StateDisconnected)
		text, _ := reply.Get(TagText)
		return fmt.Errorf("%w: logon rejected: %s", ErrAuthentication, text)
	default:
		transport.Close()
		c.session.SetState(StateDisconnected)
		return fmt.Errorf("%w: unexpected logon reply %s", ErrSession, msgType)
	}
}

// ConnectWithRetry wraps Connect with the configured bounded exponential
// backoff, surfacing the last error once attempts are exhausted.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	if !c.cfg.ReconnectEnabled {
		return c.Connect(ctx)
	}

	delay := c.cfg.ReconnectDelay
	var lastErr error
	for attempt := 1; attempt <= c.cfg.ReconnectMaxAttempts; attempt++ {
		lastErr = c.Connect(ctx)
		if lastErr == nil {
			return nil
		}
		// Authentication failures will not improve on retry.
		if errors.Is(lastErr, ErrAuthentication) {
			return lastErr
		}
		if attempt == c.cfg.ReconnectMaxAttempts {
			break
		}

		c.session.SetState(StateReconnecting)
		c.logger.Warn("connect failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			c.session.SetState(StateDisconnected)
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
	c.session.SetState(StateDisconnected)
	return fmt.Errorf("connect failed after %d attempts: %w", c.cfg.ReconnectMaxAttempts, lastErr)
}

// Disconnect sends Logout when the session is active, waits briefly for the
// counterparty's confirmation, then always closes the transport and stops
// the background goroutines.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	transport := c.transport
	if transport == nil {
		c.session.SetState(StateDisconnected)
		c.mu.Unlock()
		return nil
	}

	if c.session.State() == StateActive {
		c.session.SetState(StateLoggingOut)
		if err := transport.Send(c.session.CreateLogout("")); err != nil {
			c.logger.Warn("logout send failed", zap.Error(err))
		} else {
			c.logRaw("sent logout")
			// Confirmation is best effort; the receiver signals logoutCh
			// when the counterparty's Logout arrives.
			select {
			case <-c.logoutCh:
				c.logger.Info("logout confirmed")
			case <-time.After(c.cfg.LogoutTimeout):
				c.logger.Warn("logout not confirmed", zap.Duration("waited", c.cfg.LogoutTimeout))
			}
		}
	}

	// The receiver closes done itself when the connection drops; the Once
	// covers both paths.
	c.stopOnce.Do(func() { close(c.done) })
	err := transport.Close()
	c.transport = nil
	c.session.SetState(StateDisconnected)
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Info("fix session terminated")
	return err
}

// SendOrder encodes and sends a NewOrderSingle, returning the correlation id
// used. A missing ClOrdID is generated. Fails fast when not active.
func (c *Client) SendOrder(order NewOrderSingle) (string, error) {
	if order.ClOrdID == "" {
		order.ClOrdID = newCorrelationID()
	}

	fields := []Field{
		{TagClOrdID, order.ClOrdID},
		{TagSymbol, order.Symbol},
		{TagSide, order.Side.Code()},
		{TagOrdType, order.OrdType.Code()},
		{TagOrderQty, formatQty(order.OrderQty)},
		{TagTimeInForce, order.TimeInForce.Code()},
	}
	if order.Price != nil {
		fields = append(fields, Field{TagPrice, formatPx(*order.Price)})
	}
	if order.StopPx != nil {
		fields = append(fields, Field{TagStopPx, formatPx(*order.StopPx)})
	}
	if order.Account != "" {
		fields = append(fields, Field{TagAccount, order.Account})
	}

	if err := c.sendBusiness(MsgTypeNewOrderSingle, fields); err != nil {
		return "", err
	}
	return order.ClOrdID, nil
}

// CancelOrder encodes and sends an OrderCancelRequest, returning the new
// correlation id.
func (c *Client) CancelOrder(req OrderCancelRequest) (string, error) {
	if req.ClOrdID == "" {
		req.ClOrdID = newCorrelationID()
	}

	fields := []Field{
		{TagOrigClOrdID, req.OrigClOrdID},
		{TagClOrdID, req.ClOrdID},
		{TagSymbol, req.Symbol},
		{TagSide, req.Side.Code()},
	}

	if err := c.sendBusiness(MsgTypeOrderCancelRequest, fields); err != nil {
		return "", err
	}
	return req.ClOrdID, nil
}

// ReplaceOrder encodes and sends an OrderCancelReplaceRequest, returning the
// new correlation id.
func (c *Client) ReplaceOrder(req OrderCancelReplaceRequest) (string, error) {
	if req.ClOrdID == "" {
		req.ClOrdID = newCorrelationID()
	}

	fields := []Field{
		{TagOrigClOrdID, req.OrigClOrdID},
		{TagClOrdID, req.ClOrdID},
		{TagSymbol, req.Symbol},
		{TagSide, req.Side.Code()},
		{TagOrdType, req.OrdType.Code()},
		{TagOrderQty, formatQty(req.OrderQty)},
	}
	if req.Price != nil {
		fields = append(fields, Field{TagPrice, formatPx(*req.Price)})
	}

	if err := c.sendBusiness(MsgTypeOrderCancelReplaceRequest, fields); err != nil {
		return "", err
	}
	return req.ClOrdID, nil
}

// RequestMarketData encodes and sends a MarketDataRequest, returning the
// request id.
func (c *Client) RequestMarketData(req MarketDataRequest) (string, error) {
	if req.MDReqID == "" {
		req.MDReqID = newCorrelationID()
	}

	fields := []Field{
		{TagMDReqID, req.MDReqID},
		{TagSubscriptionRequestType, req.SubscriptionType},
		{TagMarketDepth, fmt.Sprintf("%d", req.MarketDepth)},
		{TagNoRelatedSym, fmt.Sprintf("%d", len(req.Symbols))},
	}
	for _, sym := range req.Symbols {
		fields = append(fields, Field{TagSymbol, sym})
	}

	if err := c.sendBusiness(MsgTypeMarketDataRequest, fields); err != nil {
		return "", err
	}
	return req.MDReqID, nil
}

// sendBusiness gates on the Active state, stamps session headers and writes
// the message. The state check runs before any transport access so an
// inactive session never causes a write.
func (c *Client) sendBusiness(msgType MsgType, fields []Field) error {
	if c.session.State() != StateActive {
		return fmt.Errorf("%w: session not active", ErrSession)
	}

	c.mu.Lock()
	transport := c.transport
	c.mu.Unlock()
	if transport == nil {
		return fmt.Errorf("%w: no transport", ErrSession)
	}

	encoded := c.session.EncodeMessage(msgType, fields)
	if err := transport.Send(encoded); err != nil {
		return err
	}
	c.logRaw("sent " + msgType.String())
	return nil
}

// NextMessage returns the next inbound business message in arrival order,
// blocking until one is available, the context ends or the session stops.
func (c *Client) NextMessage(ctx context.Context) (*Message, error) {
	c.mu.Lock()
	msgCh := c.msgCh
	done := c.done
	c.mu.Unlock()
	if msgCh == nil {
		return nil, fmt.Errorf("%w: session not connected", ErrSession)
	}

	select {
	case msg := <-msgCh:
		return msg, nil
	case <-done:
		return nil, fmt.Errorf("%w: session closed", ErrSession)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProcessMessage validates the sequence number and handles session-level
// message types inline. It reports whether the message is a business message
// the caller should consume.
func (c *Client) ProcessMessage(msg *Message) (bool, error) {
	if err := c.session.ValidateSequence(msg); err != nil {
		return false, err
	}

	msgType, ok := msg.MsgType()
	if !ok {
		// An unrecognized type is still delivered to the consumer; only
		// session-level types are handled here.
		code, _ := msg.MsgTypeCode()
		c.logger.Warn("unrecognized message type", zap.String("code", code))
		return true, nil
	}

	switch msgType {
	case MsgTypeHeartbeat:
		c.logger.Debug("received heartbeat")
		return false, nil
	case MsgTypeTestRequest:
		testReqID, _ := msg.Get(TagTestReqID)
		c.mu.Lock()
		transport := c.transport
		c.mu.Unlock()
		if transport != nil {
			if err := transport.Send(c.session.CreateHeartbeat(testReqID)); err != nil {
				return false, err
			}
			c.logger.Debug("answered test request", zap.String("test_req_id", testReqID))
		}
		return false, nil
	case MsgTypeLogout:
		c.session.SetState(StateDisconnected)
		c.logger.Info("received logout")
		if c.logoutCh != nil {
			select {
			case c.logoutCh <- struct{}{}:
			default:
			}
		}
		return false, nil
	case MsgTypeSequenceReset:
		if raw, ok := msg.Get(TagNewSeqNo); ok {
			if seq, err := parseSeq(raw); err == nil {
				c.session.Sequences().SetIncoming(seq)
				c.logger.Info("sequence reset", zap.Uint64("new_seq", seq))
			} else {
				return false, err
			}
		}
		return false, nil
	case MsgTypeResendRequest:
		// Gap fill is an explicit non-goal; the request is surfaced in the
		// logs rather than silently dropped.
		c.logger.Warn("resend request received but not implemented")
		return false, nil
	case MsgTypeLogon:
		c.logger.Debug("received logon")
		return false, nil
	default:
		return true, nil
	}
}

// heartbeatLoop sends a Heartbeat on the configured interval while the
// session stays active. It works only with the transport and done channel of
// the session that started it, so a later reconnect never feeds it.
func (c *Client) heartbeatLoop(transport *Transport, done chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	c.logger.Debug("heartbeat loop started", zap.Duration("interval", c.cfg.HeartbeatInterval))
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if c.session.State() != StateActive {
				c.logger.Debug("heartbeat loop exiting", zap.Stringer("state", c.session.State()))
				return
			}
			if err := transport.Send(c.session.CreateHeartbeat("")); err != nil {
				c.logger.Error("heartbeat send failed", zap.Error(err))
				return
			}
			c.logger.Debug("sent heartbeat")
		}
	}
}

// receiveLoop reads messages until shutdown or a connection error, handling
// session-level messages inline and forwarding business messages to the
// bounded channel in arrival order. A connection error flips the state to
// Disconnected, closes done so the heartbeat loop stops immediately and ends
// the loop; reconnecting is left to the caller.
func (c *Client) receiveLoop(transport *Transport, done chan struct{}, stop *sync.Once) {
	defer c.wg.Done()

	c.logger.Debug("receive loop started")
	for {
		msg, err := transport.Receive()
		if err != nil {
			select {
			case <-done:
				return
			default:
			}
			c.logger.Error("receive failed", zap.Error(err))
			c.session.SetState(StateDisconnected)
			stop.Do(func() { close(done) })
			transport.Close()
			return
		}
		if c.cfg.MessageLogging {
			c.logger.Debug("raw message", zap.String("msg", msg.String()))
		}

		business, err := c.ProcessMessage(msg)
		if err != nil {
			var gap *SequenceGapError
			if errors.As(err, &gap) {
				// The caller is expected to issue a resend request; the gap
				// is reported, not repaired.
				c.logger.Warn("sequence gap detected",
					zap.Uint64("expected", gap.Expected),
					zap.Uint64("actual", gap.Actual),
				)
				continue
			}
			c.logger.Warn("message handling failed", zap.Error(err))
			continue
		}
		if !business {
			continue
		}

		select {
		case c.msgCh <- msg:
		case <-done:
			return
		}
	}
}

func (c *Client) logRaw(event string) {
	if c.cfg.MessageLogging {
		c.logger.Debug(event)
	}
}

func formatQty(v float64) string {
	return trimFloat(v)
}

func formatPx(v float64) string {
	return trimFloat(v)
}

func trimFloat(v float64) string {
	return trimZeros(fmt.Sprintf("%.8f", v))
}

func trimZeros(s string) string {
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}

func parseSeq(raw string) (uint64, error) {
	seq, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid NewSeqNo %q", ErrDecoding, raw)
	}
	return seq, nil
}

func newCorrelationID() string {
	return uuid.NewString()
}
