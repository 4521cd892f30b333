package ir

import "fmt"

// Cents is a currency amount in hundredths of the unit.
type Cents int64

// Dollars converts a whole-and-fractional amount to cents, rounding to the
// nearest cent. Intended for literals in presets and tests.
func Dollars(d float64) Cents {
	if d < 0 {
		return -Dollars(-d)
	}
	return Cents(d*100 + 0.5)
}

// Percent returns c scaled by pct/100, rounded half up.
func (c Cents) Percent(pct int64) Cents {
	return Cents((int64(c)*pct + 50) / 100)
}

// PercentFloor returns c scaled by pct/100, rounded down. Used for upper
// price bounds so the bound never exceeds the exact value.
func (c Cents) PercentFloor(pct int64) Cents {
	return Cents(int64(c) * pct / 100)
}

// PercentCeil returns c scaled by pct/100, rounded up. Used for lower
// price bounds.
func (c Cents) PercentCeil(pct int64) Cents {
	return Cents((int64(c)*pct + 99) / 100)
}

// Float returns the amount in units, for averages and charts.
func (c Cents) Float() float64 {
	return float64(c) / 100
}

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}
