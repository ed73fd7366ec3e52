// Package odds converts and combines American prices and computes payouts.
// Every function is pure.
package odds

import (
	"fmt"
	"math"
	"strconv"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/shopspring/decimal"
)

// ValidAmerican reports whether a is a usable American price.
func ValidAmerican(a int) bool {
	return a >= 100 || a <= -100
}

// AmericanToDecimal converts an American price to a decimal multiplier.
func AmericanToDecimal(a int) (float64, error) {
	switch {
	case a >= 100:
		return float64(a)/100 + 1, nil
	case a <= -100:
		return 100/math.Abs(float64(a)) + 1, nil
	default:
		return 0, fmt.Errorf("odds: american %d: %w", a, domain.ErrInvalidOdds)
	}
}

// DecimalToAmerican converts a decimal multiplier (> 1) back to American,
// rounding half away from zero.
func DecimalToAmerican(d float64) (int, error) {
	if d <= 1 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("odds: decimal %v: %w", d, domain.ErrInvalidOdds)
	}
	if d >= 2 {
		return int(math.Round((d - 1) * 100)), nil
	}
	return int(math.Round(-100 / (d - 1))), nil
}

// ImpliedProbability returns the break-even win probability of a price.
func ImpliedProbability(a int) (float64, error) {
	d, err := AmericanToDecimal(a)
	if err != nil {
		return 0, err
	}
	return 1 / d, nil
}

// CombineParlay multiplies the decimal prices of two or more legs and
// returns the combined American price.
func CombineParlay(prices []int) (int, error) {
	if len(prices) < domain.MinParlayLegs {
		return 0, fmt.Errorf("odds: combine %d legs: %w", len(prices), domain.ErrEmptyLegs)
	}
	return combine(prices)
}

// CombineLegs is CombineParlay over placed legs.
func CombineLegs(legs []domain.Leg) (int, error) {
	prices := make([]int, len(legs))
	for i, l := range legs {
		prices[i] = l.OddsAmerican
	}
	return CombineParlay(prices)
}

// Price returns the effective price of a slip: a lone price is used as is,
// two or more are combined.
func Price(prices []int) (int, error) {
	if len(prices) == 1 {
		if !ValidAmerican(prices[0]) {
			return 0, fmt.Errorf("odds: price leg 0: %w", domain.ErrIncompleteLeg)
		}
		return prices[0], nil
	}
	return CombineParlay(prices)
}

func combine(prices []int) (int, error) {
	product := 1.0
	for i, a := range prices {
		if !ValidAmerican(a) {
			return 0, fmt.Errorf("odds: leg %d price %d: %w", i, a, domain.ErrIncompleteLeg)
		}
		d, _ := AmericanToDecimal(a)
		product *= d
	}
	return DecimalToAmerican(product)
}

// Payout returns the total return (stake included) of a winning bet.
func Payout(stake float64, a int) (float64, error) {
	d, err := AmericanToDecimal(a)
	if err != nil {
		return 0, err
	}
	return stake * d, nil
}

// ToWin returns the profit portion of a winning bet.
func ToWin(stake float64, a int) (float64, error) {
	p, err := Payout(stake, a)
	if err != nil {
		return 0, err
	}
	return p - stake, nil
}

var hundred = decimal.NewFromInt(100)

// DecimalMultiplier is AmericanToDecimal carried out in exact decimal arithmetic.
func DecimalMultiplier(a int) (decimal.Decimal, error) {
	if !ValidAmerican(a) {
		return decimal.Zero, fmt.Errorf("odds: american %d: %w", a, domain.ErrInvalidOdds)
	}
	v := decimal.NewFromInt(int64(a))
	if a > 0 {
		return v.Div(hundred).Add(decimal.NewFromInt(1)), nil
	}
	return hundred.Div(v.Abs()).Add(decimal.NewFromInt(1)), nil
}

// PayoutAmount is Payout for money values, rounded to cents.
func PayoutAmount(stake decimal.Decimal, a int) (decimal.Decimal, error) {
	m, err := DecimalMultiplier(a)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundCents(stake.Mul(m)), nil
}

// ToWinAmount is ToWin for money values, rounded to cents.
func ToWinAmount(stake decimal.Decimal, a int) (decimal.Decimal, error) {
	p, err := PayoutAmount(stake, a)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundCents(p.Sub(stake)), nil
}

// RoundCents rounds half away from zero to two places.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Quote prices a prospective slip. The stake is rounded to cents before
// anything is priced from it.
func Quote(stake decimal.Decimal, prices []int) (domain.Quote, error) {
	stake = RoundCents(stake)
	if !stake.IsPositive() {
		return domain.Quote{}, fmt.Errorf("odds: quote: %w", domain.ErrInvalidStake)
	}
	if len(prices) == 0 {
		return domain.Quote{}, fmt.Errorf("odds: quote: %w", domain.ErrEmptyLegs)
	}
	if len(prices) > domain.MaxParlayLegs {
		return domain.Quote{}, fmt.Errorf("odds: quote %d legs: %w", len(prices), domain.ErrTooManyLegs)
	}
	price, err := Price(prices)
	if err != nil {
		return domain.Quote{}, err
	}
	payout, err := PayoutAmount(stake, price)
	if err != nil {
		return domain.Quote{}, err
	}
	prob, _ := ImpliedProbability(price)
	return domain.Quote{
		Stake:                stake,
		CombinedOddsAmerican: price,
		CombinedOddsDisplay:  FormatAmerican(price),
		ImpliedProbability:   math.Round(prob*10000) / 10000,
		PotentialPayout:      payout,
		ToWin:                RoundCents(payout.Sub(stake)),
	}, nil
}

// FormatAmerican renders a price with an explicit sign for favorites and dogs
// alike, e.g. "+150" and "-110".
func FormatAmerican(a int) string {
	if a > 0 {
		return "+" + strconv.Itoa(a)
	}
	return strconv.Itoa(a)
}

// FormatCurrency renders a money value as dollars and cents.
func FormatCurrency(d decimal.Decimal) string {
	r := RoundCents(d)
	if r.IsNegative() {
		return "-$" + r.Abs().StringFixed(2)
	}
	return "$" + r.StringFixed(2)
}
