package relay

// ExecutionEventMsg is the JSON execution event published to Kafka for each
// parsed execution report.
type ExecutionEventMsg struct {
	ExecID       string   `json:"exec_id"`
	OrderID      string   `json:"order_id"`
	ClOrdID      string   `json:"cl_ord_id"`
	ExecType     string   `json:"exec_type"`
	OrdStatus    string   `json:"ord_status"`
	Symbol       string   `json:"symbol"`
	Side         string   `json:"side"`
	OrderQty     float64  `json:"order_qty"`
	LastQty      *float64 `json:"last_qty,omitempty"`
	LastPx       *float64 `json:"last_px,omitempty"`
	CumQty       float64  `json:"cum_qty"`
	AvgPx        float64  `json:"avg_px"`
	LeavesQty    float64  `json:"leaves_qty"`
	Text         string   `json:"text,omitempty"`
	TsUnixMillis int64    `json:"ts_unix_millis"`
}
