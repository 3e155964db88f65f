package statefile

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"CryptoSentinel/internal/model"
)

func TestLoadSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.txt")
	content := `ASSET=ETH
CURRENT_BALANCE=0.46669
AVAILABLE_CASH_HKD=2289.95
COST_BASIS=30743
LAST_REFERENCE_PRICE=30000
CUSTOM_NOTE=manual-topup
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	st, err := Load(path, "ETH")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.Balance != 0.46669 || st.AvailableCash != 2289.95 || st.CostBasis != 30743 {
		t.Errorf("loaded state = %+v", st)
	}
	if st.Extra["CUSTOM_NOTE"] != "manual-topup" {
		t.Errorf("unknown key lost: %+v", st.Extra)
	}

	if err := st.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := Load(path, "ETH")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Balance != st.Balance || again.AvailableCash != st.AvailableCash ||
		again.CostBasis != st.CostBasis || again.ReferencePrice != st.ReferencePrice {
		t.Errorf("round trip changed state: %+v vs %+v", again, st)
	}
	if again.Extra["CUSTOM_NOTE"] != "manual-topup" {
		t.Error("unknown key lost on save")
	}
}

func TestLoad_MissingAndMalformed(t *testing.T) {
	st, err := Load(filepath.Join(t.TempDir(), "none.txt"), "BTC")
	if err != nil {
		t.Fatalf("missing file should be fresh state, got %v", err)
	}
	if st.Asset != "BTC" || st.Balance != 0 {
		t.Errorf("fresh state = %+v", st)
	}
	if st.CostBasisPtr() != nil {
		t.Error("fresh state should have no cost basis")
	}

	path := filepath.Join(t.TempDir(), "state.txt")
	bad := "garbage line without equals\nCURRENT_BALANCE=1.5\nCOST_BASIS=notanumber\n"
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	st, err = Load(path, "ETH")
	if err != nil {
		t.Fatalf("malformed lines should be skipped, got %v", err)
	}
	if st.Balance != 1.5 || st.CostBasis != 0 {
		t.Errorf("state after malformed input = %+v", st)
	}
}

func TestApplyBuy_WeightedCostBasis(t *testing.T) {
	st := &State{Asset: "ETH", Balance: 0.3, AvailableCash: 5000, CostBasis: 30000}

	// 3000 HKD at 20000 buys 0.15 units: basis (0.3*30000 + 3000) / 0.45.
	if err := st.ApplyBuy(3000, 20000); err != nil {
		t.Fatalf("apply buy: %v", err)
	}
	if math.Abs(st.CostBasis-26666.666667) > 0.001 {
		t.Errorf("cost basis = %v, want ~26666.67", st.CostBasis)
	}
	if math.Abs(st.Balance-0.45) > 1e-9 {
		t.Errorf("balance = %v, want 0.45", st.Balance)
	}
	if st.AvailableCash != 2000 {
		t.Errorf("cash = %v, want 2000", st.AvailableCash)
	}

	if err := st.ApplyBuy(99999, 20000); err == nil {
		t.Error("buy beyond available cash should fail")
	}
}

func TestApplyBuy_FirstPurchaseSetsBasis(t *testing.T) {
	st := &State{Asset: "ETH", AvailableCash: 1000}
	if err := st.ApplyBuy(500, 25000); err != nil {
		t.Fatal(err)
	}
	if st.CostBasis != 25000 {
		t.Errorf("cost basis = %v, want entry price 25000", st.CostBasis)
	}
}

func TestApplySell(t *testing.T) {
	st := &State{Asset: "ETH", Balance: 0.4, AvailableCash: 100, CostBasis: 30000}
	if err := st.ApplySell(0.1, 32000); err != nil {
		t.Fatal(err)
	}
	if math.Abs(st.Balance-0.3) > 1e-9 || st.AvailableCash != 3300 {
		t.Errorf("after partial sell: %+v", st)
	}
	if st.CostBasis != 30000 {
		t.Error("partial sell must not move the cost basis")
	}

	if err := st.ApplySell(1.0, 32000); err == nil {
		t.Error("selling more than the balance should fail")
	}

	if err := st.ApplySell(0.3, 32000); err != nil {
		t.Fatal(err)
	}
	if st.CostBasis != 0 {
		t.Error("flat position should clear the cost basis")
	}
}

func TestPending_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")

	if p := LoadPending(path); p.Pending {
		t.Error("missing file should mean no pending decision")
	}

	d := &model.Decision{Kind: model.DecisionBuy, Price: 21400, Amount: 500}
	if err := SavePending(path, d, 22000); err != nil {
		t.Fatalf("save pending: %v", err)
	}
	p := LoadPending(path)
	if !p.Pending || p.Decision == nil || p.Decision.Kind != model.DecisionBuy {
		t.Fatalf("loaded pending = %+v", p)
	}
	if p.ReferencePrice != 22000 {
		t.Errorf("reference price = %v, want 22000", p.ReferencePrice)
	}

	if err := ClearPending(path); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if p := LoadPending(path); p.Pending {
		t.Error("cleared gate still pending")
	}
	if err := ClearPending(path); err != nil {
		t.Errorf("clearing twice should be fine: %v", err)
	}

	if err := os.WriteFile(path, []byte("]["), 0644); err != nil {
		t.Fatal(err)
	}
	if p := LoadPending(path); p.Pending {
		t.Error("corrupt pending file should mean no pending decision")
	}
}
