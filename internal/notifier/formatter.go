package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"TSNiSAM/internal/model"
)

var labelIcon = map[model.SignalLabel]string{
	model.SignalStrongBuy:  "🟢🟢",
	model.SignalBuy:        "🟢",
	model.SignalHold:       "⚪",
	model.SignalSell:       "🔴",
	model.SignalStrongSell: "🔴🔴",
}

// FormatDigest formats the per-ticker signals into one Telegram message.
func FormatDigest(entries []model.DigestEntry, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>TS-NiSAM Daily Digest</b> | %s\n\n", now.Format("2006-01-02")))

	for _, e := range entries {
		name := html.EscapeString(e.Ticker.Symbol)
		if e.Signal == nil {
			b.WriteString(fmt.Sprintf("❌ <b>%s</b>: %s\n", name, html.EscapeString(e.Error)))
			continue
		}
		s := e.Signal
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %.2f | %s (%+.2f)\n",
			labelIcon[s.Label], name, s.LastClose, s.Label, s.TotalScore))
		if s.WarningMsg != "" {
			b.WriteString(fmt.Sprintf("   ⚠️ %s\n", html.EscapeString(s.WarningMsg)))
		}
	}
	return b.String()
}

// FormatSignal formats one signal with its factor breakdown.
func FormatSignal(s *model.Signal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | close %.2f\n\n", html.EscapeString(s.Symbol), s.LastClose))
	for _, f := range s.Factors {
		b.WriteString(fmt.Sprintf("  %s (%s): %+.1f ×%.2f = %+.3f\n",
			f.Name, html.EscapeString(f.Commentary), f.RawScore, f.Weight, f.Weighted))
	}
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  Total: %+.3f → %s %s\n", s.TotalScore, labelIcon[s.Label], s.Label))
	if s.WarningMsg != "" {
		b.WriteString(fmt.Sprintf("\n⚠️ %s\n", html.EscapeString(s.WarningMsg)))
	}
	return b.String()
}

// FormatTickers lists the catalog.
func FormatTickers(tickers []model.TickerInfo) string {
	var b strings.Builder
	b.WriteString("📋 <b>Tracked tickers</b>\n\n")
	for _, t := range tickers {
		b.WriteString(fmt.Sprintf("• <code>%s</code> %s", html.EscapeString(t.Symbol), html.EscapeString(t.Name)))
		if t.Sector != "" {
			b.WriteString(fmt.Sprintf(" (%s)", html.EscapeString(t.Sector)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HelpText lists the supported commands.
const HelpText = "Available commands:\n• /digest\n• /tickers\n• /signal SYMBOL"
