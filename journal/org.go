package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatRunOrg renders a run and its trades as an Org-mode block. Facts go
// in a PROPERTIES drawer; trades are grouped by expiry in tables.
func FormatRunOrg(r Run, trades []TradeRow) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("* SCREEN: %s %s (%s)\n", r.Ticker, r.Mode, shortID(r.RunID)))
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":RUN_ID:   %s\n", r.RunID))
	b.WriteString(fmt.Sprintf(":TICKER:   %s\n", r.Ticker))
	b.WriteString(fmt.Sprintf(":MODE:     %s\n", r.Mode))
	b.WriteString(fmt.Sprintf(":WINDOW:   %d-%d days\n", r.MinDays, r.MaxDays))
	b.WriteString(fmt.Sprintf(":CHAINS:   %d\n", r.Chains))
	b.WriteString(fmt.Sprintf(":TRADES:   %d\n", r.Trades))
	b.WriteString(fmt.Sprintf(":DURATION: %s\n", r.Duration.Round(time.Millisecond)))
	b.WriteString(fmt.Sprintf(":CREATED:  [%s]\n", r.Created.UTC().Format("2006-01-02 Mon 15:04")))
	b.WriteString(":END:\n")

	if len(trades) == 0 {
		b.WriteString("\n# no trades recorded\n")
		return b.String()
	}

	var expiry time.Time
	for i, t := range trades {
		if i == 0 || !t.Expiry.Equal(expiry) {
			expiry = t.Expiry
			b.WriteString(fmt.Sprintf("\n** Expiry %s\n", expiry.UTC().Format("2006-01-02")))
			b.WriteString("| Rank | Score | Prob % | Annual % | P/L Ratio | Contracts | Trade |\n")
			b.WriteString("|------+-------+--------+----------+-----------+-----------+-------|\n")
		}
		b.WriteString(fmt.Sprintf("| %d | %d | %.2f | %.2f | %.2f | %d | %s |\n",
			t.Rank, t.Score, t.Probability, t.Annualized, t.Ratio, t.Contracts, t.Legs))
	}
	return b.String()
}

// FormatRunsOrg renders a one-line summary per run as an Org table.
func FormatRunsOrg(runs []Run) string {
	if len(runs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| Run | Created | Ticker | Mode | Chains | Trades | Duration |\n")
	b.WriteString("|-----+---------+--------+------+--------+--------+----------|\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %d | %s |\n",
			r.RunID,
			r.Created.UTC().Format(time.RFC3339),
			r.Ticker,
			r.Mode,
			r.Chains,
			r.Trades,
			r.Duration.Round(time.Millisecond),
		))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
