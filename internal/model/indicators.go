package model

// Trend classifies recent price direction from higher-lows vs lower-lows.
type Trend string

const (
	TrendUp           Trend = "uptrend"
	TrendDown         Trend = "downtrend"
	TrendSideways     Trend = "sideways"
	TrendInsufficient Trend = "insufficient_data"
)

// VolatilityTier buckets the mean absolute daily change over the trailing month.
type VolatilityTier string

const (
	VolatilityLow      VolatilityTier = "low"
	VolatilityModerate VolatilityTier = "moderate"
	VolatilityHigh     VolatilityTier = "high"
	VolatilityExtreme  VolatilityTier = "extreme"
)

// VolumeSignal classifies today's volume against the trailing average.
type VolumeSignal string

const (
	VolumeExtremeSpike VolumeSignal = "extreme_spike"
	VolumeHighSpike    VolumeSignal = "high_spike"
	VolumeNormal       VolumeSignal = "normal"
	VolumeLow          VolumeSignal = "low_volume"
	VolumeInsufficient VolumeSignal = "insufficient_data"
)

// Momentum is the EMA(12)/EMA(26) crossover direction.
type Momentum string

const (
	MomentumBullish Momentum = "bullish"
	MomentumBearish Momentum = "bearish"
)

// Capitulation summarises a panic-selling check: a sharp drop on spiking volume
// near recent lows.
type Capitulation struct {
	Detected    bool
	Probability float64
	Severity    float64
	Signals     int
}

// TechnicalSnapshot is the ephemeral indicator bundle recomputed each tick.
// It is derived state and never persisted as a source of truth.
type TechnicalSnapshot struct {
	RSI            float64
	RSIValid       bool
	Trend          Trend
	TrendStrength  float64
	Support        float64 // 0 when unknown
	Resistance     float64 // 0 when unknown
	Pivot          float64
	NearSupport    bool
	NearResistance bool
	Volatility     VolatilityTier
	VolumeSignal   VolumeSignal
	Percentile     int
	Momentum       Momentum
	Capitulation   Capitulation
}
