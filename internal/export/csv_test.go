package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	line := 45.5
	acct := "a1"
	pl := decimal.NewFromInt(-20)
	settled := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	wagers := []domain.Wager{
		{
			ID:           "w1",
			Kind:         domain.WagerKindSingle,
			AccountID:    &acct,
			Book:         "dk",
			Stake:        decimal.NewFromInt(50),
			CombinedOdds: 150,
			Status:       domain.WagerStatusPending,
			PlacedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Legs:         []domain.Leg{{MarketKey: "moneyline", Side: domain.SideHome, OddsAmerican: 150}},
		},
		{
			ID:           "w2",
			Kind:         domain.WagerKindParlay,
			Stake:        decimal.NewFromInt(20),
			CombinedOdds: 264,
			Status:       domain.WagerStatusLost,
			ProfitLoss:   &pl,
			SettledAt:    &settled,
			PlacedAt:     time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC),
			Legs: []domain.Leg{
				{MarketKey: "total", Side: domain.SideOver, LineValue: &line, OddsAmerican: -110, Status: domain.LegStatusLost},
				{MarketKey: "spread", Side: domain.SideAway, LineValue: &line, OddsAmerican: -110, Status: domain.LegStatusWon},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, wagers))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])

	assert.Equal(t, []string{
		"w1", "2026-01-01T00:00:00Z", "single", "a1", "dk", "1", "moneyline home (+150)",
		"50.00", "+150", "75.00", "pending", "", "",
	}, records[1])

	assert.Equal(t, "total over 45.5 (-110) [lost] | spread away 45.5 (-110) [won]", records[2][6])
	assert.Equal(t, "-20.00", records[2][11])
	assert.Equal(t, "2026-01-02T03:00:00Z", records[2][12])
}

func TestRowQuotesFormulaText(t *testing.T) {
	w := domain.Wager{
		ID:           "w3",
		Kind:         domain.WagerKindSingle,
		Book:         "=HYPERLINK(\"http://x\")",
		Stake:        decimal.NewFromInt(10),
		CombinedOdds: -110,
		Status:       domain.WagerStatusPending,
		Legs:         []domain.Leg{{MarketKey: "@sum", Side: domain.SideHome, OddsAmerican: -110}},
	}

	row := Row(w)
	assert.Equal(t, "'=HYPERLINK(\"http://x\")", row[4])
	assert.Equal(t, "'@sum home (-110)", row[6])
	assert.Equal(t, "-110", row[8])

	for _, s := range []string{"+1", "-1", "@a", "=a", "\tx"} {
		assert.Equal(t, "'"+s, safeCell(s))
	}
	assert.Equal(t, "dk", safeCell("dk"))
	assert.Equal(t, "", safeCell(""))
}
