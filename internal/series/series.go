package series

import (
	"errors"

	"CryptoSentinel/internal/model"
)

// ErrOutOfOrder is returned when a sample is older than the last recorded one.
var ErrOutOfOrder = errors.New("price sample older than last recorded sample")

// Series is a bounded, time-ordered window of recent price samples. Oldest
// samples are evicted FIFO once capacity is reached; access is always the
// most-recent window so nothing smarter than a sliding window is needed.
type Series struct {
	points     []model.PricePoint
	capacity   int
	minSamples int
}

// New creates a Series. capacity bounds the window; minSamples is the minimum
// history required before the moving average is defined.
func New(capacity, minSamples int) *Series {
	if capacity <= 0 {
		capacity = 100
	}
	if minSamples <= 0 {
		minSamples = 10
	}
	return &Series{
		points:     make([]model.PricePoint, 0, capacity),
		capacity:   capacity,
		minSamples: minSamples,
	}
}

// Append records a sample. Timestamps must be non-decreasing.
func (s *Series) Append(p model.PricePoint) error {
	if n := len(s.points); n > 0 && p.Time.Before(s.points[n-1].Time) {
		return ErrOutOfOrder
	}
	s.points = append(s.points, p)
	if len(s.points) > s.capacity {
		s.points = s.points[len(s.points)-s.capacity:]
	}
	return nil
}

// Len reports the number of samples currently in the window.
func (s *Series) Len() int { return len(s.points) }

// Last returns the most recent sample.
func (s *Series) Last() (model.PricePoint, bool) {
	if len(s.points) == 0 {
		return model.PricePoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// MovingAverage returns the simple moving average over the window. ok is false
// until minSamples samples exist.
func (s *Series) MovingAverage() (float64, bool) {
	if len(s.points) < s.minSamples {
		return 0, false
	}
	sum := 0.0
	for _, p := range s.points {
		sum += p.Price
	}
	return sum / float64(len(s.points)), true
}

// ConvictionReady reports whether the window is full. Conviction-scored
// signals require a complete window.
func (s *Series) ConvictionReady() bool { return len(s.points) == s.capacity }

// Prices returns a copy of the sample values in order.
func (s *Series) Prices() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Price
	}
	return out
}
