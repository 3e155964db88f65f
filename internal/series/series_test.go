package series

import (
	"testing"
	"time"

	"CryptoSentinel/internal/model"
)

func TestAppend_RejectsOutOfOrder(t *testing.T) {
	s := New(10, 3)
	base := time.Now()
	if err := s.Append(model.PricePoint{Time: base, Price: 100}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(model.PricePoint{Time: base.Add(-time.Minute), Price: 101}); err != ErrOutOfOrder {
		t.Errorf("expected ErrOutOfOrder, got %v", err)
	}
	// Equal timestamps are allowed (non-decreasing).
	if err := s.Append(model.PricePoint{Time: base, Price: 102}); err != nil {
		t.Errorf("equal timestamp should be accepted: %v", err)
	}
}

func TestAppend_EvictsOldest(t *testing.T) {
	s := New(3, 1)
	base := time.Now()
	for i := 0; i < 5; i++ {
		if err := s.Append(model.PricePoint{Time: base.Add(time.Duration(i) * time.Minute), Price: float64(i)}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("expected len 3, got %d", s.Len())
	}
	got := s.Prices()
	want := []float64{2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("prices[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMovingAverage_RequiresMinSamples(t *testing.T) {
	s := New(100, 10)
	base := time.Now()
	for i := 0; i < 9; i++ {
		s.Append(model.PricePoint{Time: base.Add(time.Duration(i) * time.Minute), Price: 100})
	}
	if _, ok := s.MovingAverage(); ok {
		t.Error("moving average should be undefined below min samples")
	}
	s.Append(model.PricePoint{Time: base.Add(10 * time.Minute), Price: 200})
	ma, ok := s.MovingAverage()
	if !ok {
		t.Fatal("moving average should be defined at min samples")
	}
	if ma != 110 {
		t.Errorf("expected MA 110, got %v", ma)
	}
}

func TestConvictionReady_AtCapacity(t *testing.T) {
	s := New(5, 2)
	base := time.Now()
	for i := 0; i < 4; i++ {
		s.Append(model.PricePoint{Time: base.Add(time.Duration(i) * time.Minute), Price: 1})
	}
	if s.ConvictionReady() {
		t.Error("should not be conviction-ready below capacity")
	}
	s.Append(model.PricePoint{Time: base.Add(5 * time.Minute), Price: 1})
	if !s.ConvictionReady() {
		t.Error("should be conviction-ready at capacity")
	}
}
