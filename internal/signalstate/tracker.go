// Package signalstate decides whether a decision is worth notifying, keeping
// the last-delivered signal on disk so restarts do not re-alert.
package signalstate

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"CryptoSentinel/internal/model"
)

const historyLimit = 10

// Tracker applies the anti-spam rules against the last delivered signal.
type Tracker struct {
	mu              sync.Mutex
	filePath        string
	convictionDelta int
	priceDeltaPct   float64
	state           model.SignalState
}

// NewTracker loads prior signal state from filePath; a missing or corrupt file
// starts clean, meaning the next decision is treated as the first ever.
func NewTracker(filePath string, convictionDelta int, priceDeltaPct float64) *Tracker {
	t := &Tracker{
		filePath:        filePath,
		convictionDelta: convictionDelta,
		priceDeltaPct:   priceDeltaPct,
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", filePath).Msg("cannot read signal state, starting clean")
		}
		return t
	}
	if err := json.Unmarshal(data, &t.state); err != nil {
		log.Warn().Err(err).Str("file", filePath).Msg("corrupt signal state, starting clean")
		t.state = model.SignalState{}
	}
	return t
}

// ShouldNotify applies the dedup rules in order and reports the first that
// matched. The very first decision ever seen is suppressed but recorded as the
// baseline; after that, state only moves through UpdateState once a message is
// actually delivered.
func (t *Tracker) ShouldNotify(kind model.DecisionKind, conviction int, price float64) (bool, string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.LastSignal == "" {
		t.state.LastSignal = kind
		t.state.LastSignalTime = time.Now()
		t.state.LastConviction = conviction
		t.state.LastPrice = price
		t.state.ConsecutiveSame = 1
		if err := t.save(); err != nil {
			log.Error().Err(err).Msg("cannot persist signal baseline")
		}
		return false, "establishing baseline"
	}

	if kind != t.state.LastSignal {
		return true, fmt.Sprintf("signal changed %s -> %s", t.state.LastSignal, kind)
	}

	if delta := abs(conviction - t.state.LastConviction); delta >= t.convictionDelta {
		return true, fmt.Sprintf("conviction moved %d points", delta)
	}

	if kind == model.DecisionHold {
		return false, "repeat HOLD"
	}

	if t.state.LastPrice > 0 {
		drift := math.Abs(price-t.state.LastPrice) / t.state.LastPrice * 100
		if drift >= t.priceDeltaPct {
			return true, fmt.Sprintf("price drifted %.1f%% since last alert", drift)
		}
	}

	return false, "duplicate signal"
}

// UpdateState records a delivered notification and persists it.
func (t *Tracker) UpdateState(kind model.DecisionKind, conviction int, price float64, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if kind == t.state.LastSignal {
		t.state.ConsecutiveSame++
	} else {
		t.state.ConsecutiveSame = 1
	}
	now := time.Now()
	t.state.LastSignal = kind
	t.state.LastSignalTime = now
	t.state.LastConviction = conviction
	t.state.LastPrice = price
	t.state.LastReason = reason

	t.state.History = append(t.state.History, model.SignalRecord{
		Signal: kind, Conviction: conviction, Price: price, Time: now, Reason: reason,
	})
	if len(t.state.History) > historyLimit {
		t.state.History = t.state.History[len(t.state.History)-historyLimit:]
	}

	return t.save()
}

// State returns a copy of the persisted signal state.
func (t *Tracker) State() model.SignalState {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	s.History = append([]model.SignalRecord(nil), t.state.History...)
	return s
}

func (t *Tracker) save() error {
	data, err := json.MarshalIndent(&t.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal signal state: %w", err)
	}
	if dir := filepath.Dir(t.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create signal state dir: %w", err)
		}
	}
	if err := os.WriteFile(t.filePath, data, 0644); err != nil {
		return fmt.Errorf("write signal state: %w", err)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
