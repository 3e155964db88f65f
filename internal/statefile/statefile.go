// Package statefile persists the holdings ledger as a flat KEY=value file and
// the awaiting-confirmation gate as a small JSON document.
package statefile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// State is the holdings ledger: what we hold, what cash remains, and the
// reference price decisions are measured against. CostBasis 0 means unknown.
type State struct {
	Asset          string
	Balance        float64
	AvailableCash  float64
	CostBasis      float64
	ReferencePrice float64

	// Extra preserves keys we do not interpret so a round-trip never loses them.
	Extra map[string]string
}

const (
	keyAsset     = "ASSET"
	keyBalance   = "CURRENT_BALANCE"
	keyCash      = "AVAILABLE_CASH_HKD"
	keyCostBasis = "COST_BASIS"
	keyReference = "LAST_REFERENCE_PRICE"
)

// Load reads the state file. A missing file yields a fresh state for the given
// asset; a malformed line is skipped with a warning rather than failing the run.
func Load(path, asset string) (*State, error) {
	st := &State{Asset: asset, Extra: make(map[string]string)}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			log.Warn().Str("line", line).Msg("skipping malformed state line")
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case keyAsset:
			st.Asset = value
		case keyBalance:
			st.Balance = parseFloat(key, value)
		case keyCash:
			st.AvailableCash = parseFloat(key, value)
		case keyCostBasis:
			st.CostBasis = parseFloat(key, value)
		case keyReference:
			st.ReferencePrice = parseFloat(key, value)
		default:
			st.Extra[key] = value
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	return st, nil
}

func parseFloat(key, value string) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("unparseable state value, using 0")
		return 0
	}
	return v
}

// Save writes the full state back, known keys first, extras in sorted order.
func (s *State) Save(path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s\n", keyAsset, s.Asset)
	fmt.Fprintf(&b, "%s=%s\n", keyBalance, formatFloat(s.Balance))
	fmt.Fprintf(&b, "%s=%s\n", keyCash, formatFloat(s.AvailableCash))
	fmt.Fprintf(&b, "%s=%s\n", keyCostBasis, formatFloat(s.CostBasis))
	fmt.Fprintf(&b, "%s=%s\n", keyReference, formatFloat(s.ReferencePrice))

	extras := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	for _, k := range extras {
		fmt.Fprintf(&b, "%s=%s\n", k, s.Extra[k])
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CostBasisPtr returns the cost basis, or nil when it is unknown.
func (s *State) CostBasisPtr() *float64 {
	if s.CostBasis <= 0 {
		return nil
	}
	cb := s.CostBasis
	return &cb
}

// ApplyBuy spends cashAmount at price, moving the cost basis to the weighted
// average of the old holding and the new purchase.
func (s *State) ApplyBuy(cashAmount, price float64) error {
	if cashAmount <= 0 || price <= 0 {
		return fmt.Errorf("invalid buy: amount %v at price %v", cashAmount, price)
	}
	if cashAmount > s.AvailableCash {
		return fmt.Errorf("buy of %v exceeds available cash %v", cashAmount, s.AvailableCash)
	}

	units := cashAmount / price
	newBalance := s.Balance + units
	if s.Balance > 0 && s.CostBasis > 0 {
		s.CostBasis = (s.Balance*s.CostBasis + cashAmount) / newBalance
	} else {
		s.CostBasis = price
	}
	s.Balance = newBalance
	s.AvailableCash -= cashAmount
	return nil
}

// ApplySell releases units at price, adding the proceeds to available cash.
// The cost basis is unchanged by a partial sell and cleared when flat.
func (s *State) ApplySell(units, price float64) error {
	if units <= 0 || price <= 0 {
		return fmt.Errorf("invalid sell: %v units at price %v", units, price)
	}
	if units > s.Balance {
		return fmt.Errorf("sell of %v units exceeds balance %v", units, s.Balance)
	}

	s.Balance -= units
	s.AvailableCash += units * price
	if s.Balance == 0 {
		s.CostBasis = 0
	}
	return nil
}
