package statefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"CryptoSentinel/internal/model"
)

// Pending is the awaiting-confirmation gate. While set, evaluation ticks are
// skipped so the ledger cannot drift ahead of a trade the user has not
// confirmed or skipped yet.
type Pending struct {
	Pending        bool            `json:"pending"`
	Decision       *model.Decision `json:"decision,omitempty"`
	ReferencePrice float64         `json:"reference_price,omitempty"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}

// LoadPending reads the gate file. Missing or malformed files mean no pending
// decision.
func LoadPending(path string) *Pending {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", path).Msg("cannot read pending file, assuming none")
		}
		return &Pending{}
	}
	var p Pending
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("corrupt pending file, assuming none")
		return &Pending{}
	}
	return &p
}

// SavePending records a decision awaiting user confirmation.
func SavePending(path string, d *model.Decision, refPrice float64) error {
	p := Pending{Pending: true, Decision: d, ReferencePrice: refPrice, CreatedAt: time.Now()}
	data, err := json.MarshalIndent(&p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal pending: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create pending dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write pending: %w", err)
	}
	return nil
}

// ClearPending removes the gate. A missing file is already clear.
func ClearPending(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear pending: %w", err)
	}
	return nil
}
