package notifier

import (
	"fmt"
	"strings"
	"time"

	"CryptoSentinel/internal/model"
	"CryptoSentinel/internal/statefile"
)

// FormatDecision renders an evaluation outcome into a Telegram message.
func FormatDecision(asset string, d *model.Decision, snap model.TechnicalSnapshot, refPrice float64) string {
	var b strings.Builder

	switch d.Kind {
	case model.DecisionBuy:
		b.WriteString(fmt.Sprintf("🟢 <b>BUY signal</b> | %s | %s\n\n", asset, time.Now().Format("2006-01-02 15:04")))
		b.WriteString(fmt.Sprintf("Price: %.2f (reference %.2f, tier %+.1f%%)\n", d.Price, refPrice, d.TriggerPct))
		b.WriteString(fmt.Sprintf("Suggested spend: $%.2f\n", d.Amount))
	case model.DecisionSell:
		b.WriteString(fmt.Sprintf("🔴 <b>SELL signal</b> | %s | %s\n\n", asset, time.Now().Format("2006-01-02 15:04")))
		b.WriteString(fmt.Sprintf("Price: %.2f (reference %.2f, tier %+.1f%%)\n", d.Price, refPrice, d.TriggerPct))
		b.WriteString(fmt.Sprintf("Suggested amount: %.6f %s\n", d.Amount, asset))
		if d.HasProfit {
			b.WriteString(fmt.Sprintf("Profit vs cost basis: %+.2f%%\n", d.ProfitPct))
		}
	default:
		b.WriteString(fmt.Sprintf("⚪ <b>HOLD</b> | %s | %s\n\n", asset, time.Now().Format("2006-01-02 15:04")))
		b.WriteString(fmt.Sprintf("Price: %.2f (reference %.2f)\n", d.Price, refPrice))
	}

	b.WriteString(fmt.Sprintf("Reason: %s\n", d.Reason))
	if d.Conviction > 0 {
		b.WriteString(fmt.Sprintf("\nConviction: %d/100 (%s)\n", d.Conviction, ConfidenceBand(d.Conviction)))
	}

	writeTechnicalContext(&b, snap)

	if d.Kind != model.DecisionHold {
		b.WriteString("\nReply /confirm when executed, /skip to ignore.")
	}
	return b.String()
}

// FormatForcedSell renders a trailing-stop exit alert.
func FormatForcedSell(asset string, fs model.ForcedSell) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("⛔ <b>TRAILING STOP HIT</b> | %s | %s\n\n", asset, time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Price %.2f fell to stop %.2f (peak %.2f)\n", fs.Price, fs.StopPrice, fs.PeakPrice))
	b.WriteString(fmt.Sprintf("Sell %.6f %s to lock in %+.2f%%\n", fs.Amount, asset, fs.ProfitPct))
	b.WriteString("\nReply /confirm when executed, /skip to keep the position.")
	return b.String()
}

func writeTechnicalContext(b *strings.Builder, snap model.TechnicalSnapshot) {
	b.WriteString("\n📈 <b>Technicals</b>\n")
	if snap.RSIValid {
		b.WriteString(fmt.Sprintf("RSI: %.1f\n", snap.RSI))
	}
	b.WriteString(fmt.Sprintf("Trend: %s | Volatility: %s\n", snap.Trend, snap.Volatility))
	if snap.Support > 0 {
		b.WriteString(fmt.Sprintf("Support %.2f / Resistance %.2f\n", snap.Support, snap.Resistance))
	}
	b.WriteString(fmt.Sprintf("Volume: %s | Percentile: %d\n", snap.VolumeSignal, snap.Percentile))
	if snap.Capitulation.Detected {
		b.WriteString(fmt.Sprintf("⚠️ Capitulation: %.0f%% probability, severity %.0f\n",
			snap.Capitulation.Probability, snap.Capitulation.Severity))
	}
}

// FormatStatus renders the holdings ledger for the /status command.
func FormatStatus(st *statefile.State, price float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>%s status</b>\n\n", st.Asset))
	b.WriteString(fmt.Sprintf("Balance: %.6f\n", st.Balance))
	b.WriteString(fmt.Sprintf("Available cash: $%.2f\n", st.AvailableCash))
	if st.CostBasis > 0 {
		b.WriteString(fmt.Sprintf("Cost basis: %.2f\n", st.CostBasis))
		if price > 0 && st.Balance > 0 {
			pnl := (price - st.CostBasis) / st.CostBasis * 100
			b.WriteString(fmt.Sprintf("Unrealised P/L: %+.2f%% at %.2f\n", pnl, price))
		}
	}
	if st.ReferencePrice > 0 {
		b.WriteString(fmt.Sprintf("Reference price: %.2f\n", st.ReferencePrice))
	}
	return b.String()
}

// FormatPositions renders the open position book for the /positions command.
func FormatPositions(asset string, positions []model.Position, price float64) string {
	if len(positions) == 0 {
		return "No open positions."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎯 <b>%s positions</b>\n\n", asset))
	for i, p := range positions {
		pnl := (price - p.CostBasis) / p.CostBasis * 100
		b.WriteString(fmt.Sprintf("%d. %.6f @ %.2f (%s)\n", i+1, p.Amount, p.CostBasis, p.EntryTime.Format("01-02")))
		b.WriteString(fmt.Sprintf("   peak %.2f | stop %.2f | P/L %+.2f%%\n", p.PeakPrice, p.TrailingStopPrice, pnl))
	}
	return b.String()
}

// FormatPending renders the awaiting-confirmation reminder.
func FormatPending(p *statefile.Pending) string {
	if !p.Pending || p.Decision == nil {
		return "Nothing awaiting confirmation."
	}
	return fmt.Sprintf("⏳ Awaiting confirmation since %s:\n%s at %.2f\n\nReply /confirm or /skip.",
		p.CreatedAt.Format("2006-01-02 15:04"), p.Decision.Kind, p.Decision.Price)
}
