package model

import "time"

// PricePoint is a single observed spot price. Immutable once recorded.
type PricePoint struct {
	Time  time.Time
	Price float64
}
