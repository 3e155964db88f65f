package model

// DecisionKind tags the closed set of per-tick outcomes.
type DecisionKind string

const (
	DecisionHold DecisionKind = "HOLD"
	DecisionBuy  DecisionKind = "BUY"
	DecisionSell DecisionKind = "SELL"
)

// Decision is the outcome of one evaluation tick. Created fresh every tick and
// never mutated after creation; the kind determines which fields are meaningful.
type Decision struct {
	Kind       DecisionKind `json:"kind"`
	Price      float64      `json:"price"`
	Reason     string       `json:"reason"`
	TriggerPct float64      `json:"trigger_pct,omitempty"` // BUY/SELL: the tier that fired
	Amount     float64      `json:"amount,omitempty"`      // BUY: HKD to spend; SELL: asset units to sell
	Conviction int          `json:"conviction"`            // 0-100
	ProfitPct  float64      `json:"profit_pct,omitempty"`  // SELL with known cost basis
	HasProfit  bool         `json:"has_profit,omitempty"`
	Forced     bool         `json:"forced,omitempty"`      // raised by the trailing-stop tracker
	PositionID string       `json:"position_id,omitempty"` // forced sells: position that hit its stop
}
