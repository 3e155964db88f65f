package model

import "time"

// PositionStatus is the lifecycle state of a tracked position.
type PositionStatus string

const (
	PositionActive          PositionStatus = "active"
	PositionTrailingStopHit PositionStatus = "trailing_stop_hit"
	PositionClosed          PositionStatus = "closed"
)

// Position is one open exposure tracked for trailing-stop purposes. The set of
// positions is the stop tracker's record of exposure, not the holdings ledger.
type Position struct {
	ID                string         `json:"id"`
	CostBasis         float64        `json:"cost_basis"`
	Amount            float64        `json:"amount"`
	EntryTime         time.Time      `json:"entry_time"`
	PeakPrice         float64        `json:"peak_price"`
	PeakTime          time.Time      `json:"peak_time"`
	TrailingStopPrice float64        `json:"trailing_stop_price"`
	Status            PositionStatus `json:"status"`
	ExitPrice         float64        `json:"exit_price,omitempty"`
	ProfitLocked      *float64       `json:"profit_locked,omitempty"`
}

// ForcedSell is the advisory exit signal emitted when an active position
// breaches its trailing stop while profitable. It becomes binding only once
// the caller confirms the trade and closes the position.
type ForcedSell struct {
	PositionID string
	Amount     float64
	Price      float64
	PeakPrice  float64
	StopPrice  float64
	ProfitPct  float64
	Reason     string
}
