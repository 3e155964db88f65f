package calculator

import (
	"math"
	"testing"

	"CryptoSentinel/internal/model"
)

func TestRSI_InsufficientData(t *testing.T) {
	if _, ok := RSI([]float64{1, 2, 3}, 14); ok {
		t.Error("RSI should be undefined under period+1 samples")
	}
}

func TestRSI_Sentinels(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	if rsi, ok := RSI(rising, 14); !ok || rsi != 100 {
		t.Errorf("all-gains series should read 100, got %v (ok=%v)", rsi, ok)
	}

	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 100
	}
	if rsi, ok := RSI(flat, 14); !ok || rsi != 50 {
		t.Errorf("flat series should read neutral 50, got %v (ok=%v)", rsi, ok)
	}
}

func TestRSI_KnownValue(t *testing.T) {
	// Window deltas: -1 (loss), +2 (gain) -> rs=2 -> rsi=66.67
	rsi, ok := RSI([]float64{1, 2, 1, 3}, 2)
	if !ok {
		t.Fatal("expected defined RSI")
	}
	if math.Abs(rsi-66.666) > 0.01 {
		t.Errorf("expected RSI ~66.67, got %v", rsi)
	}
}

func zigzag(start, step float64, n int) []float64 {
	// peak, trough, peak, trough... with troughs trending by step
	out := make([]float64, 0, n)
	trough := start
	for i := 0; i < n/2; i++ {
		out = append(out, trough+5, trough)
		trough += step
	}
	return append(out, trough+5)
}

func TestDetectTrend(t *testing.T) {
	up := DetectTrend(zigzag(100, 2, 14))
	if up.Trend != model.TrendUp {
		t.Errorf("expected uptrend, got %s (strength %.2f)", up.Trend, up.Strength)
	}
	down := DetectTrend(zigzag(100, -2, 14))
	if down.Trend != model.TrendDown {
		t.Errorf("expected downtrend, got %s", down.Trend)
	}
	if got := DetectTrend([]float64{1, 2, 3}); got.Trend != model.TrendInsufficient {
		t.Errorf("expected insufficient_data, got %s", got.Trend)
	}
}

func TestAnalyzeVolume_Tiers(t *testing.T) {
	base := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100}
	tests := []struct {
		today float64
		want  model.VolumeSignal
	}{
		{200, model.VolumeExtremeSpike},
		{150, model.VolumeHighSpike},
		{100, model.VolumeNormal},
		{50, model.VolumeLow},
	}
	for _, tt := range tests {
		stats := AnalyzeVolume(append(append([]float64{}, base...), tt.today))
		if stats.Signal != tt.want {
			t.Errorf("today=%v: expected %s, got %s (spike %.2f)", tt.today, tt.want, stats.Signal, stats.SpikeFactor)
		}
	}
	if AnalyzeVolume([]float64{1, 2}).Signal != model.VolumeInsufficient {
		t.Error("short series should read insufficient_data")
	}
}

func swings(amplitudePct float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100
		if i%2 == 1 {
			out[i] = 100 * (1 + amplitudePct/100)
		}
	}
	return out
}

func TestVolatility_Tiers(t *testing.T) {
	tests := []struct {
		amplitude float64
		want      model.VolatilityTier
	}{
		{0.5, model.VolatilityLow},
		{2.5, model.VolatilityModerate},
		{4.0, model.VolatilityHigh},
		{8.0, model.VolatilityExtreme},
	}
	for _, tt := range tests {
		stats := Volatility(swings(tt.amplitude, 40))
		if stats.Tier != tt.want {
			t.Errorf("amplitude %.1f%%: expected %s, got %s (vol30 %.2f)", tt.amplitude, tt.want, stats.Tier, stats.Vol30)
		}
	}
	if Volatility([]float64{100, 101}).Tier != model.VolatilityModerate {
		t.Error("thin history should default to the moderate tier")
	}
}

func TestSupportResistance(t *testing.T) {
	prices := []float64{100, 90, 110, 95, 105}
	lv, ok := SupportResistance(prices)
	if !ok {
		t.Fatal("expected levels")
	}
	if lv.Support != 90*0.98 {
		t.Errorf("support = %v, want %v", lv.Support, 90*0.98)
	}
	if lv.Resistance != 110*1.02 {
		t.Errorf("resistance = %v, want %v", lv.Resistance, 110*1.02)
	}
	if _, ok := SupportResistance([]float64{1, 2}); ok {
		t.Error("short series should not produce levels")
	}
}

func TestPercentile(t *testing.T) {
	prices := []float64{100, 200}
	if got := Percentile(150, prices); got != 50 {
		t.Errorf("mid price percentile = %d, want 50", got)
	}
	if got := Percentile(500, prices); got != 100 {
		t.Errorf("above range should clamp to 100, got %d", got)
	}
	if got := Percentile(10, prices); got != 0 {
		t.Errorf("below range should clamp to 0, got %d", got)
	}
	if got := Percentile(150, []float64{150}); got != 50 {
		t.Errorf("thin history should read 50, got %d", got)
	}
}

func TestDetectMomentum(t *testing.T) {
	rising := make([]float64, 40)
	falling := make([]float64, 40)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 200 - float64(i)
	}
	if m, ok := DetectMomentum(rising); !ok || m.Signal != model.MomentumBullish {
		t.Errorf("rising series should be bullish, got %+v (ok=%v)", m, ok)
	}
	if m, ok := DetectMomentum(falling); !ok || m.Signal != model.MomentumBearish {
		t.Errorf("falling series should be bearish, got %+v (ok=%v)", m, ok)
	}
	if _, ok := DetectMomentum(rising[:20]); ok {
		t.Error("short series should be undefined")
	}
}

func TestDetectCapitulation(t *testing.T) {
	prices := make([]float64, 20)
	volumes := make([]float64, 20)
	for i := range prices {
		prices[i] = 100
		volumes[i] = 100
	}
	prices[19] = 90  // 10% drop to a fresh low
	volumes[19] = 300 // 3x volume spike

	cap := DetectCapitulation(prices, volumes, 5.0)
	if !cap.Detected {
		t.Fatalf("expected capitulation, got %+v", cap)
	}
	if cap.Signals != 4 {
		t.Errorf("expected all 4 signals, got %d", cap.Signals)
	}
	if cap.Severity != 100 {
		t.Errorf("severity should cap at 100, got %v", cap.Severity)
	}

	calm := DetectCapitulation([]float64{100, 100, 100, 100, 100}, volumes[:5], 5.0)
	if calm.Detected {
		t.Error("flat prices should not read as capitulation")
	}
}
