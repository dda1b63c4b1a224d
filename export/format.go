package export

import (
	"database/sql"
	"math"
	"strconv"
	"time"

	"retaildash/model"

	"github.com/shopspring/decimal"
)

// Cell spellings for values that are not numbers.
const (
	NotApplicable = "N/A"
	Infinite      = "inf"
)

// money prints two decimal places unless that would drop precision.
func money(d decimal.Decimal) string {
	if d.Exponent() >= -2 {
		return d.StringFixed(2)
	}
	return d.String()
}

func ratio(f sql.NullFloat64, places int) string {
	if !f.Valid || math.IsNaN(f.Float64) {
		return NotApplicable
	}
	if math.IsInf(f.Float64, 0) {
		return Infinite
	}
	return strconv.FormatFloat(f.Float64, 'f', places, 64)
}

// weeks prints weeks of supply or an index, spelling infinite cover "inf".
func weeks(f sql.NullFloat64, infinite bool, places int) string {
	if infinite {
		return Infinite
	}
	return ratio(f, places)
}

func num(f float64, places int) string {
	return strconv.FormatFloat(f, 'f', places, 64)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func boolean(b bool) string {
	return strconv.FormatBool(b)
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(model.DateLayout)
}
