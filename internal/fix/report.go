package fix

import "fmt"

// ExecutionReport is the decoded order lifecycle event (MsgType 8).
// Ownership transfers to the caller; the client does not retain it.
type ExecutionReport struct {
	OrderID   string
	ClOrdID   string
	ExecID    string
	ExecType  ExecType
	OrdStatus OrdStatus
	Symbol    string
	Side      Side
	OrderQty  float64
	LastQty   *float64
	LastPx    *float64
	CumQty    float64
	AvgPx     float64
	LeavesQty float64
	Text      string
}

// ParseExecutionReport extracts an ExecutionReport from a decoded message.
// OrderID, ClOrdID, ExecID, ExecType, OrdStatus, Symbol, Side and OrderQty
// are mandatory; CumQty, AvgPx and LeavesQty default to 0 when absent.
func ParseExecutionReport(msg *Message) (*ExecutionReport, error) {
	r := &ExecutionReport{}
	var err error

	if r.OrderID, err = requireField(msg, TagOrderID, "OrderID"); err != nil {
		return nil, err
	}
	if r.ClOrdID, err = requireField(msg, TagClOrdID, "ClOrdID"); err != nil {
		return nil, err
	}
	if r.ExecID, err = requireField(msg, TagExecID, "ExecID"); err != nil {
		return nil, err
	}

	execType, err := requireField(msg, TagExecType, "ExecType")
	if err != nil {
		return nil, err
	}
	et, ok := ExecTypeFromCode(execType)
	if !ok {
		return nil, fmt.Errorf("%w: invalid ExecType %q", ErrInvalidMessage, execType)
	}
	r.ExecType = et

	ordStatus, err := requireField(msg, TagOrdStatus, "OrdStatus")
	if err != nil {
		return nil, err
	}
	os, ok := OrdStatusFromCode(ordStatus)
	if !ok {
		return nil, fmt.Errorf("%w: invalid OrdStatus %q", ErrInvalidMessage, ordStatus)
	}
	r.OrdStatus = os

	if r.Symbol, err = requireField(msg, TagSymbol, "Symbol"); err != nil {
		return nil, err
	}

	sideCode, err := requireField(msg, TagSide, "Side")
	if err != nil {
		return nil, err
	}
	side, ok := SideFromCode(sideCode)
	if !ok {
		return nil, fmt.Errorf("%w: invalid Side %q", ErrInvalidMessage, sideCode)
	}
	r.Side = side

	qtyStr, err := requireField(msg, TagOrderQty, "OrderQty")
	if err != nil {
		return nil, err
	}
	qty, ok := msg.Float(TagOrderQty)
	if !ok {
		return nil, fmt.Errorf("%w: invalid OrderQty %q", ErrDecoding, qtyStr)
	}
	r.OrderQty = qty

	r.CumQty, _ = msg.Float(TagCumQty)
	r.AvgPx, _ = msg.Float(TagAvgPx)
	r.LeavesQty, _ = msg.Float(TagLeavesQty)

	if v, ok := msg.Float(TagLastQty); ok {
		r.LastQty = &v
	}
	if v, ok := msg.Float(TagLastPx); ok {
		r.LastPx = &v
	}
	r.Text, _ = msg.Get(TagText)

	return r, nil
}

// OrderCancelReject is the decoded reply to a failed cancel or replace
// request (MsgType 9).
type OrderCancelReject struct {
	OrderID      string
	ClOrdID      string
	OrigClOrdID  string
	OrdStatus    OrdStatus
	CxlRejReason string
	Text         string
}

// ParseOrderCancelReject extracts an OrderCancelReject from a decoded message.
func ParseOrderCancelReject(msg *Message) (*OrderCancelReject, error) {
	r := &OrderCancelReject{}
	var err error

	if r.OrderID, err = requireField(msg, TagOrderID, "OrderID"); err != nil {
		return nil, err
	}
	if r.ClOrdID, err = requireField(msg, TagClOrdID, "ClOrdID"); err != nil {
		return nil, err
	}
	if r.OrigClOrdID, err = requireField(msg, TagOrigClOrdID, "OrigClOrdID"); err != nil {
		return nil, err
	}

	ordStatus, err := requireField(msg, TagOrdStatus, "OrdStatus")
	if err != nil {
		return nil, err
	}
	os, ok := OrdStatusFromCode(ordStatus)
	if !ok {
		return nil, fmt.Errorf("%w: invalid OrdStatus %q", ErrInvalidMessage, ordStatus)
	}
	r.OrdStatus = os

	r.CxlRejReason, _ = msg.Get(TagCxlRejReason)
	r.Text, _ = msg.Get(TagText)

	return r, nil
}

// MarketDataSnapshot carries the simple non-repeating fields of a market
// data snapshot (MsgType W). Repeating MD entry groups are not parsed.
type MarketDataSnapshot struct {
	MDReqID string
	Symbol  string
}

// ParseMarketDataSnapshot extracts the request id and symbol from a decoded
// snapshot message.
func ParseMarketDataSnapshot(msg *Message) (*MarketDataSnapshot, error) {
	s := &MarketDataSnapshot{}
	var err error

	if s.Symbol, err = requireField(msg, TagSymbol, "Symbol"); err != nil {
		return nil, err
	}
	s.MDReqID, _ = msg.Get(TagMDReqID)

	return s, nil
}

func requireField(msg *Message, tag int, name string) (string, error) {
	v, ok := msg.Get(tag)
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrInvalidMessage, name)
	}
	return v, nil
}
