// Package recorder persists evaluation history for later analysis.
package recorder

import "CryptoSentinel/internal/model"

// TickEvent is one evaluation tick: the inputs and the outcome.
type TickEvent struct {
	Asset          string
	Price          float64
	ReferencePrice float64
	Decision       model.DecisionKind
	Conviction     int
	RSI            float64
	Trend          string
	Volatility     string
	Notified       bool
}

// SignalEvent is a decision actually delivered to the user.
type SignalEvent struct {
	Asset      string
	Kind       model.DecisionKind
	Price      float64
	TriggerPct float64
	Amount     float64
	Conviction int
	Reason     string
	Forced     bool
}

// StopEvent records a trailing-stop breach.
type StopEvent struct {
	Asset      string
	PositionID string
	Price      float64
	PeakPrice  float64
	StopPrice  float64
	ProfitPct  float64
}

// TradeEvent is a confirmed trade applied to the ledger.
type TradeEvent struct {
	Asset        string
	Side         model.DecisionKind
	Price        float64
	Amount       float64
	CashAfter    float64
	BalanceAfter float64
	CostBasis    float64
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordTick(evt *TickEvent) error
	RecordSignal(evt *SignalEvent) error
	RecordStopEvent(evt *StopEvent) error
	RecordTrade(evt *TradeEvent) error
	Close() error
}
