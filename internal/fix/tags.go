package fix

// SOH is the FIX field delimiter byte.
const SOH = "\x01"

// Common FIX tag numbers used by this client.
const (
	TagBeginString             = 8
	TagBodyLength              = 9
	TagCheckSum                = 10
	TagClOrdID                 = 11
	TagCumQty                  = 14
	TagEndSeqNo                = 16
	TagExecID                  = 17
	TagLastPx                  = 31
	TagLastQty                 = 32
	TagMsgSeqNum               = 34
	TagMsgType                 = 35
	TagNewSeqNo                = 36
	TagOrderID                 = 37
	TagOrderQty                = 38
	TagOrdStatus               = 39
	TagOrdType                 = 40
	TagOrigClOrdID             = 41
	TagPrice                   = 44
	TagSenderCompID            = 49
	TagSendingTime             = 52
	TagSide                    = 54
	TagSymbol                  = 55
	TagTargetCompID            = 56
	TagText                    = 58
	TagTimeInForce             = 59
	TagBeginSeqNo              = 7
	TagAvgPx                   = 6
	TagAccount                 = 1
	TagStopPx                  = 99
	TagCxlRejReason            = 102
	TagEncryptMethod           = 98
	TagHeartBtInt              = 108
	TagTestReqID               = 112
	TagResetSeqNumFlag         = 141
	TagNoRelatedSym            = 146
	TagExecType                = 150
	TagLeavesQty               = 151
	TagMDReqID                 = 262
	TagSubscriptionRequestType = 263
	TagMarketDepth             = 264
	TagMDEntryType             = 269
	TagMDEntryPx               = 270
	TagMDEntrySize             = 271
	TagUsername                = 553
	TagPassword                = 554
)
