// Package export renders the wager ledger as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/odds"
)

// Header is the column order of the ledger CSV.
var Header = []string{
	"wager_id", "placed_at", "kind", "account_id", "book", "legs", "selections",
	"stake", "odds", "to_win", "status", "profit_loss", "settled_at",
}

// WriteCSV writes one row per wager. Money is fixed to two places and odds
// carry their sign.
func WriteCSV(w io.Writer, wagers []domain.Wager) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, wg := range wagers {
		if err := cw.Write(Row(wg)); err != nil {
			return fmt.Errorf("export: write wager %s: %w", wg.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

// Row renders a wager as a CSV record aligned with Header.
func Row(w domain.Wager) []string {
	account := ""
	if w.AccountID != nil {
		account = *w.AccountID
	}
	toWin := ""
	if win, err := odds.ToWinAmount(w.Stake, w.CombinedOdds); err == nil {
		toWin = win.StringFixed(2)
	}
	pl := ""
	if w.ProfitLoss != nil {
		pl = w.ProfitLoss.StringFixed(2)
	}
	settled := ""
	if w.SettledAt != nil {
		settled = w.SettledAt.UTC().Format(time.RFC3339)
	}
	return []string{
		w.ID,
		w.PlacedAt.UTC().Format(time.RFC3339),
		string(w.Kind),
		account,
		safeCell(w.Book),
		strconv.Itoa(len(w.Legs)),
		safeCell(Selections(w.Legs)),
		w.Stake.StringFixed(2),
		odds.FormatAmerican(w.CombinedOdds),
		toWin,
		string(w.Status),
		pl,
		settled,
	}
}

// safeCell quotes free text that a spreadsheet would otherwise evaluate as a
// formula. Numeric columns are written as-is.
func safeCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// Selections summarizes legs as "market side line (odds)" joined by " | ".
func Selections(legs []domain.Leg) string {
	parts := make([]string, 0, len(legs))
	for _, l := range legs {
		var b strings.Builder
		b.WriteString(l.MarketKey)
		b.WriteByte(' ')
		b.WriteString(string(l.Side))
		if l.LineValue != nil {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(*l.LineValue, 'f', -1, 64))
		}
		fmt.Fprintf(&b, " (%s)", odds.FormatAmerican(l.OddsAmerican))
		if l.Status != "" && l.Status != domain.LegStatusPending {
			fmt.Fprintf(&b, " [%s]", l.Status)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, " | ")
}
