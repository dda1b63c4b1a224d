package aggregation

import (
	"database/sql"
	"math"

	"github.com/shopspring/decimal"
)

var na = sql.NullFloat64{}

func valid(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: true}
}

// percent returns num/den × 100, or the sentinel when den is zero.
func percent(num, den float64) sql.NullFloat64 {
	if den == 0 {
		return na
	}
	return valid(num / den * 100)
}

func decimalPercent(num, den decimal.Decimal) sql.NullFloat64 {
	if den.IsZero() {
		return na
	}
	return valid(num.Div(den).InexactFloat64() * 100)
}

// mean averages the valid cells. The result is the sentinel when no cell
// is valid.
func mean(cells []sql.NullFloat64) sql.NullFloat64 {
	var sum float64
	var n int
	for _, c := range cells {
		if !c.Valid || math.IsNaN(c.Float64) {
			continue
		}
		sum += c.Float64
		n++
	}
	if n == 0 {
		return na
	}
	return valid(sum / float64(n))
}

// compareNull orders valid cells before the sentinel. Within valid cells
// it returns -1, 0 or 1 by ascending value.
func compareNull(a, b sql.NullFloat64) int {
	switch {
	case a.Valid && !b.Valid:
		return -1
	case !a.Valid && b.Valid:
		return 1
	case !a.Valid && !b.Valid:
		return 0
	case a.Float64 < b.Float64:
		return -1
	case a.Float64 > b.Float64:
		return 1
	}
	return 0
}

func qty(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
