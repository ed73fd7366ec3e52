package odds

import (
	"math"
	"testing"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     float64
	}{
		{"even money", 100, 2.0},
		{"plus 150", 150, 2.5},
		{"minus 110", -110, 1.909090},
		{"minus 200", -200, 1.5},
		{"plus 1000", 1000, 11.0},
		{"minus 100", -100, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmericanToDecimal(tt.american)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
			assert.Greater(t, got, 1.0)
		})
	}
}

func TestAmericanToDecimalRejectsDeadZone(t *testing.T) {
	for _, a := range []int{0, 99, -99, 50, -1} {
		_, err := AmericanToDecimal(a)
		assert.ErrorIs(t, err, domain.ErrInvalidOdds, "american %d", a)
	}
}

func TestAmericanToDecimalMonotonic(t *testing.T) {
	var prev float64
	first := true
	for a := -1000; a <= 1000; a++ {
		if !ValidAmerican(a) {
			continue
		}
		d, err := AmericanToDecimal(a)
		require.NoError(t, err)
		if !first {
			assert.GreaterOrEqual(t, d, prev, "american %d", a)
		}
		prev, first = d, false
	}
}

func TestDecimalToAmerican(t *testing.T) {
	tests := []struct {
		dec  float64
		want int
	}{
		{2.0, 100},
		{2.5, 150},
		{1.5, -200},
		{1.909090909, -110},
		{3.644628, 264},
	}
	for _, tt := range tests {
		got, err := DecimalToAmerican(tt.dec)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "decimal %v", tt.dec)
	}

	_, err := DecimalToAmerican(1.0)
	assert.ErrorIs(t, err, domain.ErrInvalidOdds)
}

func TestRoundTripWithinOne(t *testing.T) {
	for a := -2000; a <= 2000; a++ {
		if !ValidAmerican(a) {
			continue
		}
		d, err := AmericanToDecimal(a)
		require.NoError(t, err)
		back, err := DecimalToAmerican(d)
		require.NoError(t, err)
		diff := back - a
		if a == -100 {
			// -100 and +100 are the same price.
			assert.Equal(t, 100, back)
			continue
		}
		assert.LessOrEqual(t, int(math.Abs(float64(diff))), 1, "american %d", a)
	}
}

func TestCombineParlay(t *testing.T) {
	got, err := CombineParlay([]int{-110, -110})
	require.NoError(t, err)
	assert.Equal(t, 264, got)

	got, err = CombineParlay([]int{150, -120, 200})
	require.NoError(t, err)
	// 2.5 * 1.8333 * 3.0 = 13.75
	assert.Equal(t, 1275, got)
}

func TestCombineParlayOrderIndependent(t *testing.T) {
	a, err := CombineParlay([]int{150, -120, 200, -300})
	require.NoError(t, err)
	b, err := CombineParlay([]int{-300, 200, 150, -120})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCombineParlayErrors(t *testing.T) {
	_, err := CombineParlay([]int{-110})
	assert.ErrorIs(t, err, domain.ErrEmptyLegs)

	_, err = CombineParlay(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyLegs)

	_, err = CombineParlay([]int{-110, 0})
	assert.ErrorIs(t, err, domain.ErrIncompleteLeg)

	_, err = CombineParlay([]int{-110, 50})
	assert.ErrorIs(t, err, domain.ErrIncompleteLeg)
}

func TestCombineLegs(t *testing.T) {
	legs := []domain.Leg{{OddsAmerican: -110}, {OddsAmerican: -110}}
	got, err := CombineLegs(legs)
	require.NoError(t, err)
	assert.Equal(t, 264, got)
}

func TestPayout(t *testing.T) {
	p, err := Payout(100, -110)
	require.NoError(t, err)
	assert.InDelta(t, 190.909, p, 0.001)

	p, err = Payout(100, 150)
	require.NoError(t, err)
	assert.InDelta(t, 250.0, p, 1e-9)

	w, err := ToWin(100, 150)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, w, 1e-9)

	_, err = Payout(100, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidOdds)
}

func TestPayoutAmount(t *testing.T) {
	p, err := PayoutAmount(decimal.NewFromInt(100), -110)
	require.NoError(t, err)
	assert.Equal(t, "190.91", p.StringFixed(2))

	w, err := ToWinAmount(decimal.NewFromInt(50), 150)
	require.NoError(t, err)
	assert.Equal(t, "75.00", w.StringFixed(2))
}

func TestQuote(t *testing.T) {
	q, err := Quote(decimal.NewFromInt(100), []int{-110, -110})
	require.NoError(t, err)
	assert.Equal(t, 264, q.CombinedOddsAmerican)
	assert.Equal(t, "+264", q.CombinedOddsDisplay)
	assert.Equal(t, "364.00", q.PotentialPayout.StringFixed(2))
	assert.Equal(t, "264.00", q.ToWin.StringFixed(2))

	single, err := Quote(decimal.NewFromInt(100), []int{-110})
	require.NoError(t, err)
	assert.Equal(t, -110, single.CombinedOddsAmerican)
	assert.Equal(t, "190.91", single.PotentialPayout.StringFixed(2))
	assert.Equal(t, "90.91", single.ToWin.StringFixed(2))
}

func TestQuoteRoundsStakeFirst(t *testing.T) {
	a, err := Quote(decimal.RequireFromString("10.004"), []int{-110, -110})
	require.NoError(t, err)
	b, err := Quote(decimal.RequireFromString("10.001"), []int{-110, -110})
	require.NoError(t, err)

	assert.Equal(t, "10.00", a.Stake.StringFixed(2))
	assert.Equal(t, "36.40", a.PotentialPayout.StringFixed(2))
	assert.Equal(t, "26.40", a.ToWin.StringFixed(2))
	assert.Equal(t, a, b)
}

func TestQuoteErrors(t *testing.T) {
	_, err := Quote(decimal.Zero, []int{-110})
	assert.ErrorIs(t, err, domain.ErrInvalidStake)

	_, err = Quote(decimal.RequireFromString("0.004"), []int{150})
	assert.ErrorIs(t, err, domain.ErrInvalidStake)

	_, err = Quote(decimal.NewFromInt(10), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyLegs)

	_, err = Quote(decimal.NewFromInt(10), []int{0})
	assert.ErrorIs(t, err, domain.ErrIncompleteLeg)

	many := make([]int, domain.MaxParlayLegs+1)
	for i := range many {
		many[i] = -110
	}
	_, err = Quote(decimal.NewFromInt(10), many)
	assert.ErrorIs(t, err, domain.ErrTooManyLegs)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "+150", FormatAmerican(150))
	assert.Equal(t, "-110", FormatAmerican(-110))
	assert.Equal(t, "$190.91", FormatCurrency(decimal.NewFromFloat(190.909)))
	assert.Equal(t, "-$50.00", FormatCurrency(decimal.NewFromInt(-50)))
}
