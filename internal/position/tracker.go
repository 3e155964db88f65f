// Package position tracks open buy positions and their volatility-scaled
// trailing stops, persisted as JSON between runs.
package position

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"CryptoSentinel/internal/config"
	"CryptoSentinel/internal/model"
)

type stopsFile struct {
	Positions   map[string]*model.Position `json:"positions"`
	LastUpdated time.Time                  `json:"last_updated"`
}

// Tracker owns the position book. All methods are safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	filePath  string
	cfg       config.TrailingStop
	positions map[string]*model.Position
}

// NewTracker loads the position book from filePath. A missing or unreadable
// file starts an empty book.
func NewTracker(filePath string, cfg config.TrailingStop) *Tracker {
	t := &Tracker{
		filePath:  filePath,
		cfg:       cfg,
		positions: make(map[string]*model.Position),
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", filePath).Msg("cannot read positions file, starting fresh")
		}
		return t
	}
	var f stopsFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn().Err(err).Str("file", filePath).Msg("corrupt positions file, starting fresh")
		return t
	}
	if f.Positions != nil {
		t.positions = f.Positions
	}
	return t
}

// RecordBuy opens a new tracked position and returns its ID. The initial stop
// sits a fixed fraction below the entry price.
func (t *Tracker) RecordBuy(costBasis, amount float64) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.NewString()
	now := time.Now()
	t.positions[id] = &model.Position{
		ID:                id,
		CostBasis:         costBasis,
		Amount:            amount,
		EntryTime:         now,
		PeakPrice:         costBasis,
		PeakTime:          now,
		TrailingStopPrice: costBasis * (1 - t.cfg.InitialStopPct),
		Status:            model.PositionActive,
	}
	if err := t.save(); err != nil {
		return "", err
	}
	log.Info().Str("position", id).Float64("cost_basis", costBasis).
		Float64("amount", amount).Msg("tracking new position")
	return id, nil
}

// trailFor maps a volatility tier to its trail width.
func (t *Tracker) trailFor(tier model.VolatilityTier) float64 {
	switch tier {
	case model.VolatilityLow:
		return t.cfg.Low
	case model.VolatilityHigh:
		return t.cfg.High
	case model.VolatilityExtreme:
		return t.cfg.Extreme
	default:
		return t.cfg.Moderate
	}
}

// UpdateAll advances every active position against the current price and
// returns the forced sells whose stop was breached. Each stop fires at most
// once; the position is marked stop-hit immediately.
func (t *Tracker) UpdateAll(price float64, tier model.VolatilityTier) []model.ForcedSell {
	t.mu.Lock()
	defer t.mu.Unlock()

	trail := t.trailFor(tier)
	var forced []model.ForcedSell

	ids := make([]string, 0, len(t.positions))
	for id := range t.positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := t.positions[id]
		if p.Status != model.PositionActive {
			continue
		}

		if price > p.PeakPrice {
			p.PeakPrice = price
			p.PeakTime = time.Now()
		}

		// The stop trails the peak but never drops below the entry price,
		// so a position that has peaked above cost cannot round-trip to a loss.
		stop := p.PeakPrice * (1 - trail)
		if stop < p.CostBasis {
			stop = p.CostBasis
		}
		if stop > p.TrailingStopPrice {
			p.TrailingStopPrice = stop
		}

		profitPct := (price - p.CostBasis) / p.CostBasis * 100
		if price <= p.TrailingStopPrice && profitPct > t.cfg.ProfitFloorPct {
			p.Status = model.PositionTrailingStopHit
			forced = append(forced, model.ForcedSell{
				PositionID: id,
				Amount:     p.Amount,
				Price:      price,
				PeakPrice:  p.PeakPrice,
				StopPrice:  p.TrailingStopPrice,
				ProfitPct:  profitPct,
				Reason: fmt.Sprintf("price %.2f fell to trailing stop %.2f (peak %.2f)",
					price, p.TrailingStopPrice, p.PeakPrice),
			})
			log.Info().Str("position", id).Float64("price", price).
				Float64("stop", p.TrailingStopPrice).Msg("trailing stop hit")
		}
	}

	if err := t.save(); err != nil {
		log.Error().Err(err).Msg("cannot persist positions after update")
	}
	return forced
}

// ClosePosition finalises a position after its exit trade is confirmed.
func (t *Tracker) ClosePosition(id string, exitPrice, profitPct float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.positions[id]
	if !ok {
		return fmt.Errorf("unknown position %s", id)
	}
	p.Status = model.PositionClosed
	p.ExitPrice = exitPrice
	p.ProfitLocked = &profitPct
	return t.save()
}

// ActivePositions returns a snapshot of the open positions, oldest first.
func (t *Tracker) ActivePositions() []model.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []model.Position
	for _, p := range t.positions {
		if p.Status == model.PositionActive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.Before(out[j].EntryTime) })
	return out
}

// ProfitPotential sums the unrealised profit of the active positions at the
// given price, in quote currency.
func (t *Tracker) ProfitPotential(price float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total float64
	for _, p := range t.positions {
		if p.Status == model.PositionActive {
			total += (price - p.CostBasis) * p.Amount
		}
	}
	return total
}

func (t *Tracker) save() error {
	f := stopsFile{Positions: t.positions, LastUpdated: time.Now()}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal positions: %w", err)
	}
	if dir := filepath.Dir(t.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create positions dir: %w", err)
		}
	}
	if err := os.WriteFile(t.filePath, data, 0644); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}
	return nil
}
