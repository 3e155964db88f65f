package model

import "time"

// SignalRecord is one entry in the bounded notification history.
type SignalRecord struct {
	Signal     DecisionKind `json:"signal"`
	Conviction int          `json:"conviction"`
	Price      float64      `json:"price"`
	Time       time.Time    `json:"time"`
	Reason     string       `json:"reason"`
}

// SignalState records the last decision actually delivered to the user.
// Suppressed decisions never touch it, so drift accumulates against the last
// notification rather than the most recent tick.
type SignalState struct {
	LastSignal      DecisionKind   `json:"last_signal,omitempty"` // empty until first notification
	LastSignalTime  time.Time      `json:"last_signal_time"`
	LastConviction  int            `json:"last_conviction"`
	LastPrice       float64        `json:"last_price"`
	LastReason      string         `json:"last_reason"`
	ConsecutiveSame int            `json:"consecutive_same_signals"`
	History         []SignalRecord `json:"signal_history"`
}
