package strategy

import (
	"math"

	"CryptoSentinel/internal/config"
	"CryptoSentinel/internal/model"
)

// Side selects which evaluation context a conviction score is produced for.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Default caps the step tables below were tuned against. A configured cap
// rescales every band of its factor proportionally.
const (
	defLossMagnitude = 10
	defRSI           = 25
	defTrend         = 15
	defBuyVolume     = 15
	defSellVolume    = 10
	defPercentile    = 10
)

// Scorer converts a technical snapshot into a bounded conviction score.
// Pure: identical inputs always produce identical scores.
type Scorer struct {
	buy  config.BuyWeights
	sell config.SellWeights
}

// NewScorer builds a scorer with the configured per-side factor caps.
func NewScorer(buy config.BuyWeights, sell config.SellWeights) *Scorer {
	return &Scorer{buy: buy, sell: sell}
}

// Score produces the conviction score for one side, clamped to [0,100].
// costBasis may be nil when the average entry price is unknown.
func (s *Scorer) Score(snap model.TechnicalSnapshot, side Side, price float64, costBasis *float64) int {
	var score int
	switch side {
	case SideBuy:
		score = s.scoreBuy(snap, price, costBasis)
	case SideSell:
		score = s.scoreSell(snap, price, costBasis)
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func (s *Scorer) scoreBuy(snap model.TechnicalSnapshot, price float64, costBasis *float64) int {
	score := 0

	// Depth of the drawdown vs cost basis: the deeper the dip, the stronger
	// the averaging-down case.
	if costBasis != nil && *costBasis > 0 {
		lossPct := math.Abs((price - *costBasis) / *costBasis * 100)
		var pts int
		switch {
		case lossPct > 30:
			pts = 10
		case lossPct > 20:
			pts = 8
		case lossPct > 10:
			pts = 5
		case lossPct > 5:
			pts = 2
		}
		score += scaled(pts, s.buy.LossMagnitude, defLossMagnitude)
	}

	if snap.RSIValid {
		var pts int
		switch {
		case snap.RSI < 25:
			pts = 25
		case snap.RSI < 30:
			pts = 20
		case snap.RSI < 35:
			pts = 10
		case snap.RSI < 40:
			pts = 5
		}
		score += scaled(pts, s.buy.RSI, defRSI)
	}

	if snap.NearSupport {
		score += s.buy.SupportProximity
	}

	switch snap.Trend {
	case model.TrendUp:
		score += s.buy.Trend
	case model.TrendSideways:
		score += scaled(8, s.buy.Trend, defTrend)
	}

	switch snap.VolumeSignal {
	case model.VolumeExtremeSpike:
		score += s.buy.Volume
	case model.VolumeHighSpike:
		score += scaled(10, s.buy.Volume, defBuyVolume)
	case model.VolumeNormal:
		score += scaled(5, s.buy.Volume, defBuyVolume)
	}

	var pts int
	switch {
	case snap.Percentile < 20:
		pts = 10
	case snap.Percentile < 30:
		pts = 8
	case snap.Percentile < 40:
		pts = 5
	}
	score += scaled(pts, s.buy.Percentile, defPercentile)

	if snap.Momentum == model.MomentumBullish {
		score += s.buy.Momentum
	}
	return score
}

func (s *Scorer) scoreSell(snap model.TechnicalSnapshot, price float64, costBasis *float64) int {
	score := 0

	var profitPct float64
	hasProfit := false
	if costBasis != nil && *costBasis > 0 {
		profitPct = (price - *costBasis) / *costBasis * 100
		hasProfit = true
	}

	// The 5-15% band is the safe exit zone; beyond it the stop tracker owns
	// the exit timing.
	if hasProfit && profitPct >= 5 && profitPct <= 15 {
		score += s.sell.ProfitZone
	}

	if snap.RSIValid {
		var pts int
		switch {
		case snap.RSI > 75:
			pts = 25
		case snap.RSI > 70:
			pts = 20
		case snap.RSI > 65:
			pts = 10
		case snap.RSI > 60:
			pts = 5
		}
		score += scaled(pts, s.sell.RSI, defRSI)
	}

	if snap.NearResistance && (!hasProfit || profitPct > 2) {
		score += s.sell.ResistanceProximity
	}

	switch snap.Trend {
	case model.TrendDown:
		score += s.sell.Trend
	case model.TrendSideways:
		score += scaled(8, s.sell.Trend, defTrend)
	}

	switch snap.VolumeSignal {
	case model.VolumeExtremeSpike:
		score += s.sell.Volume
	case model.VolumeHighSpike:
		score += scaled(7, s.sell.Volume, defSellVolume)
	case model.VolumeLow:
		// weak volume on a move up is distribution, not demand
		score += scaled(5, s.sell.Volume, defSellVolume)
	}

	var pts int
	switch {
	case snap.Percentile > 80:
		pts = 10
	case snap.Percentile > 70:
		pts = 8
	case snap.Percentile > 60:
		pts = 5
	}
	score += scaled(pts, s.sell.Percentile, defPercentile)

	if snap.Momentum == model.MomentumBearish {
		score += s.sell.Momentum
	}
	return score
}

// scaled rescales a step-band value when the factor cap differs from the
// default the table was written for.
func scaled(points, limit, def int) int {
	if def == 0 || points == 0 {
		return 0
	}
	return int(math.Round(float64(points) * float64(limit) / float64(def)))
}
