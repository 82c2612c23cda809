package fix

import "github.com/google/uuid"

// NewOrderSingle is an order-entry request (MsgType D). Immutable once
// constructed; the client only reads it to build the wire message.
type NewOrderSingle struct {
	ClOrdID     string
	Symbol      string
	Side        Side
	OrdType     OrdType
	OrderQty    float64
	Price       *float64
	StopPx      *float64
	TimeInForce TimeInForce
	Account     string
}

// NewMarketOrder creates a day market order with a generated ClOrdID.
func NewMarketOrder(symbol string, side Side, qty float64) NewOrderSingle {
	return NewOrderSingle{
		ClOrdID:     uuid.NewString(),
		Symbol:      symbol,
		Side:        side,
		OrdType:     OrdTypeMarket,
		OrderQty:    qty,
		TimeInForce: TimeInForceDay,
	}
}

// NewLimitOrder creates a day limit order with a generated ClOrdID.
func NewLimitOrder(symbol string, side Side, qty, price float64) NewOrderSingle {
	o := NewMarketOrder(symbol, side, qty)
	o.OrdType = OrdTypeLimit
	o.Price = &price
	return o
}

// NewStopOrder creates a day stop order with a generated ClOrdID.
func NewStopOrder(symbol string, side Side, qty, stopPrice float64) NewOrderSingle {
	o := NewMarketOrder(symbol, side, qty)
	o.OrdType = OrdTypeStop
	o.StopPx = &stopPrice
	return o
}

// WithClOrdID overrides the generated correlation id.
func (o NewOrderSingle) WithClOrdID(id string) NewOrderSingle {
	o.ClOrdID = id
	return o
}

// WithTimeInForce overrides the time in force.
func (o NewOrderSingle) WithTimeInForce(tif TimeInForce) NewOrderSingle {
	o.TimeInForce = tif
	return o
}

// WithAccount sets the account field (tag 1).
func (o NewOrderSingle) WithAccount(account string) NewOrderSingle {
	o.Account = account
	return o
}

// OrderCancelRequest is a cancel request (MsgType F).
type OrderCancelRequest struct {
	OrigClOrdID string
	ClOrdID     string
	Symbol      string
	Side        Side
}

// NewCancelRequest creates a cancel request with a generated ClOrdID.
func NewCancelRequest(origClOrdID, symbol string, side Side) OrderCancelRequest {
	return OrderCancelRequest{
		OrigClOrdID: origClOrdID,
		ClOrdID:     uuid.NewString(),
		Symbol:      symbol,
		Side:        side,
	}
}

// OrderCancelReplaceRequest is a cancel/replace request (MsgType G).
type OrderCancelReplaceRequest struct {
	OrigClOrdID string
	ClOrdID     string
	Symbol      string
	Side        Side
	OrdType     OrdType
	OrderQty    float64
	Price       *float64
}

// NewReplaceRequest creates a cancel/replace request with a generated ClOrdID.
func NewReplaceRequest(origClOrdID, symbol string, side Side, ordType OrdType, qty float64) OrderCancelReplaceRequest {
	return OrderCancelReplaceRequest{
		OrigClOrdID: origClOrdID,
		ClOrdID:     uuid.NewString(),
		Symbol:      symbol,
		Side:        side,
		OrdType:     ordType,
		OrderQty:    qty,
	}
}

// WithPrice sets the new limit price.
func (r OrderCancelReplaceRequest) WithPrice(price float64) OrderCancelReplaceRequest {
	r.Price = &price
	return r
}

// Subscription request types for MarketDataRequest (tag 263).
const (
	SubscriptionSnapshot    = "0"
	SubscriptionSubscribe   = "1"
	SubscriptionUnsubscribe = "2"
)

// MarketDataRequest is a market data request (MsgType V).
type MarketDataRequest struct {
	MDReqID          string
	SubscriptionType string
	MarketDepth      int
	Symbols          []string
}

// NewMarketDataSnapshot requests a one-time snapshot for the given symbols.
func NewMarketDataSnapshot(symbols ...string) MarketDataRequest {
	return MarketDataRequest{
		MDReqID:          uuid.NewString(),
		SubscriptionType: SubscriptionSnapshot,
		MarketDepth:      1,
		Symbols:          symbols,
	}
}

// NewMarketDataSubscribe requests streaming updates for the given symbols.
func NewMarketDataSubscribe(symbols ...string) MarketDataRequest {
	r := NewMarketDataSnapshot(symbols...)
	r.SubscriptionType = SubscriptionSubscribe
	return r
}

// NewMarketDataUnsubscribe cancels a previous subscription.
func NewMarketDataUnsubscribe(symbols ...string) MarketDataRequest {
	r := NewMarketDataSnapshot(symbols...)
	r.SubscriptionType = SubscriptionUnsubscribe
	return r
}
