package fix

// MsgType identifies a FIX message type together with its single-character
// wire code.
type MsgType int

const (
	MsgTypeUnknown MsgType = iota
	MsgTypeHeartbeat
	MsgTypeTestRequest
	MsgTypeResendRequest
	MsgTypeReject
	MsgTypeSequenceReset
	MsgTypeLogout
	MsgTypeExecutionReport
	MsgTypeOrderCancelReject
	MsgTypeLogon
	MsgTypeNewOrderSingle
	MsgTypeOrderCancelRequest
	MsgTypeOrderCancelReplaceRequest
	MsgTypeMarketDataRequest
	MsgTypeMarketDataSnapshot
	MsgTypeMarketDataIncrementalRefresh
)

var msgTypeCodes = map[MsgType]string{
	MsgTypeHeartbeat:                    "0",
	MsgTypeTestRequest:                  "1",
	MsgTypeResendRequest:                "2",
	MsgTypeReject:                       "3",
	MsgTypeSequenceReset:                "4",
	MsgTypeLogout:                       "5",
	MsgTypeExecutionReport:              "8",
	MsgTypeOrderCancelReject:            "9",
	MsgTypeLogon:                        "A",
	MsgTypeNewOrderSingle:               "D",
	MsgTypeOrderCancelRequest:           "F",
	MsgTypeOrderCancelReplaceRequest:    "G",
	MsgTypeMarketDataRequest:            "V",
	MsgTypeMarketDataSnapshot:           "W",
	MsgTypeMarketDataIncrementalRefresh: "X",
}

var msgTypeFromCode = func() map[string]MsgType {
	m := make(map[string]MsgType, len(msgTypeCodes))
	for t, c := range msgTypeCodes {
		m[c] = t
	}
	return m
}()

// Code returns the wire code for the message type, e.g. "D" for NewOrderSingle.
func (t MsgType) Code() string {
	return msgTypeCodes[t]
}

func (t MsgType) String() string {
	switch t {
	case MsgTypeHeartbeat:
		return "Heartbeat"
	case MsgTypeTestRequest:
		return "TestRequest"
	case MsgTypeResendRequest:
		return "ResendRequest"
	case MsgTypeReject:
		return "Reject"
	case MsgTypeSequenceReset:
		return "SequenceReset"
	case MsgTypeLogout:
		return "Logout"
	case MsgTypeExecutionReport:
		return "ExecutionReport"
	case MsgTypeOrderCancelReject:
		return "OrderCancelReject"
	case MsgTypeLogon:
		return "Logon"
	case MsgTypeNewOrderSingle:
		return "NewOrderSingle"
	case MsgTypeOrderCancelRequest:
		return "OrderCancelRequest"
	case MsgTypeOrderCancelReplaceRequest:
		return "OrderCancelReplaceRequest"
	case MsgTypeMarketDataRequest:
		return "MarketDataRequest"
	case MsgTypeMarketDataSnapshot:
		return "MarketDataSnapshot"
	case MsgTypeMarketDataIncrementalRefresh:
		return "MarketDataIncrementalRefresh"
	}
	return "Unknown"
}

// MsgTypeFromCode parses a wire code into a MsgType.
func MsgTypeFromCode(code string) (MsgType, bool) {
	t, ok := msgTypeFromCode[code]
	return t, ok
}

// Side is the order side (tag 54).
type Side int

const (
	SideBuy Side = iota + 1
	SideSell
	SideSellShort
)

// Code returns the wire code for the side.
func (s Side) Code() string {
	switch s {
	case SideBuy:
		return "1"
	case SideSell:
		return "2"
	case SideSellShort:
		return "5"
	}
	return ""
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "Buy"
	case SideSell:
		return "Sell"
	case SideSellShort:
		return "SellShort"
	}
	return "Unknown"
}

// SideFromCode parses a wire code into a Side.
func SideFromCode(code string) (Side, bool) {
	switch code {
	case "1":
		return SideBuy, true
	case "2":
		return SideSell, true
	case "5":
		return SideSellShort, true
	}
	return 0, false
}

// OrdType is the order type (tag 40).
type OrdType int

const (
	OrdTypeMarket OrdType = iota + 1
	OrdTypeLimit
	OrdTypeStop
	OrdTypeStopLimit
)

// Code returns the wire code for the order type.
func (o OrdType) Code() string {
	switch o {
	case OrdTypeMarket:
		return "1"
	case OrdTypeLimit:
		return "2"
	case OrdTypeStop:
		return "3"
	case OrdTypeStopLimit:
		return "4"
	}
	return ""
}

func (o OrdType) String() string {
	switch o {
	case OrdTypeMarket:
		return "Market"
	case OrdTypeLimit:
		return "Limit"
	case OrdTypeStop:
		return "Stop"
	case OrdTypeStopLimit:
		return "StopLimit"
	}
	return "Unknown"
}

// OrdTypeFromCode parses a wire code into an OrdType.
func OrdTypeFromCode(code string) (OrdType, bool) {
	switch code {
	case "1":
		return OrdTypeMarket, true
	case "2":
		return OrdTypeLimit, true
	case "3":
		return OrdTypeStop, true
	case "4":
		return OrdTypeStopLimit, true
	}
	return 0, false
}

// TimeInForce is the order lifetime (tag 59).
type TimeInForce int

const (
	TimeInForceDay TimeInForce = iota + 1
	TimeInForceGTC
	TimeInForceIOC
	TimeInForceFOK
)

// Code returns the wire code for the time in force.
func (t TimeInForce) Code() string {
	switch t {
	case TimeInForceDay:
		return "0"
	case TimeInForceGTC:
		return "1"
	case TimeInForceIOC:
		return "3"
	case TimeInForceFOK:
		return "4"
	}
	return ""
}

func (t TimeInForce) String() string {
	switch t {
	case TimeInForceDay:
		return "Day"
	case TimeInForceGTC:
		return "GTC"
	case TimeInForceIOC:
		return "IOC"
	case TimeInForceFOK:
		return "FOK"
	}
	return "Unknown"
}

// TimeInForceFromCode parses a wire code into a TimeInForce.
func TimeInForceFromCode(code string) (TimeInForce, bool) {
	switch code {
	case "0":
		return TimeInForceDay, true
	case "1":
		return TimeInForceGTC, true
	case "3":
		return TimeInForceIOC, true
	case "4":
		return TimeInForceFOK, true
	}
	return 0, false
}

// ExecType is the execution report event type (tag 150).
type ExecType int

const (
	ExecTypeNew ExecType = iota + 1
	ExecTypePartialFill
	ExecTypeFill
	ExecTypeCanceled
	ExecTypeReplaced
	ExecTypePendingCancel
	ExecTypeRejected
	ExecTypePendingNew
	ExecTypeExpired
)

// Code returns the wire code for the execution type.
func (e ExecType) Code() string {
	switch e {
	case ExecTypeNew:
		return "0"
	case ExecTypePartialFill:
		return "1"
	case ExecTypeFill:
		return "2"
	case ExecTypeCanceled:
		return "4"
	case ExecTypeReplaced:
		return "5"
	case ExecTypePendingCancel:
		return "6"
	case ExecTypeRejected:
		return "8"
	case ExecTypePendingNew:
		return "A"
	case ExecTypeExpired:
		return "C"
	}
	return ""
}

func (e ExecType) String() string {
	switch e {
	case ExecTypeNew:
		return "New"
	case ExecTypePartialFill:
		return "PartialFill"
	case ExecTypeFill:
		return "Fill"
	case ExecTypeCanceled:
		return "Canceled"
	case ExecTypeReplaced:
		return "Replaced"
	case ExecTypePendingCancel:
		return "PendingCancel"
	case ExecTypeRejected:
		return "Rejected"
	case ExecTypePendingNew:
		return "PendingNew"
	case ExecTypeExpired:
		return "Expired"
	}
	return "Unknown"
}

// ExecTypeFromCode parses a wire code into an ExecType.
func ExecTypeFromCode(code string) (ExecType, bool) {
	switch code {
	case "0":
		return ExecTypeNew, true
	case "1":
		return ExecTypePartialFill, true
	case "2":
		return ExecTypeFill, true
	case "4":
		return ExecTypeCanceled, true
	case "5":
		return ExecTypeReplaced, true
	case "6":
		return ExecTypePendingCancel, true
	case "8":
		return ExecTypeRejected, true
	case "A":
		return ExecTypePendingNew, true
	case "C":
		return ExecTypeExpired, true
	}
	return 0, false
}

// OrdStatus is the order status (tag 39).
type OrdStatus int

const (
	OrdStatusNew OrdStatus = iota + 1
	OrdStatusPartiallyFilled
	OrdStatusFilled
	OrdStatusCanceled
	OrdStatusReplaced
	OrdStatusPendingCancel
	OrdStatusRejected
	OrdStatusPendingNew
	OrdStatusExpired
	OrdStatusPendingReplace
)

// Code returns the wire code for the order status.
func (o OrdStatus) Code() string {
	switch o {
	case OrdStatusNew:
		return "0"
	case OrdStatusPartiallyFilled:
		return "1"
	case OrdStatusFilled:
		return "2"
	case OrdStatusCanceled:
		return "4"
	case OrdStatusReplaced:
		return "5"
	case OrdStatusPendingCancel:
		return "6"
	case OrdStatusRejected:
		return "8"
	case OrdStatusPendingNew:
		return "A"
	case OrdStatusExpired:
		return "C"
	case OrdStatusPendingReplace:
		return "E"
	}
	return ""
}

func (o OrdStatus) String() string {
	switch o {
	case OrdStatusNew:
		return "New"
	case OrdStatusPartiallyFilled:
		return "PartiallyFilled"
	case OrdStatusFilled:
		return "Filled"
	case OrdStatusCanceled:
		return "Canceled"
	case OrdStatusReplaced:
		return "Replaced"
	case OrdStatusPendingCancel:
		return "PendingCancel"
	case OrdStatusRejected:
		return "Rejected"
	case OrdStatusPendingNew:
		return "PendingNew"
	case OrdStatusExpired:
		return "Expired"
	case OrdStatusPendingReplace:
		return "PendingReplace"
	}
	return "Unknown"
}

// OrdStatusFromCode parses a wire code into an OrdStatus.
func OrdStatusFromCode(code string) (OrdStatus, bool) {
	switch code {
	case "0":
		return OrdStatusNew, true
	case "1":
		return OrdStatusPartiallyFilled, true
	case "2":
		return OrdStatusFilled, true
	case "4":
		return OrdStatusCanceled, true
	case "5":
		return OrdStatusReplaced, true
	case "6":
		return OrdStatusPendingCancel, true
	case "8":
		return OrdStatusRejected, true
	case "A":
		return OrdStatusPendingNew, true
	case "C":
		return OrdStatusExpired, true
	case "E":
		return OrdStatusPendingReplace, true
	}
	return 0, false
}
