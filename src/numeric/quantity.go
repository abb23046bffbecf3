package numeric

import "math"

// Quantity is a signed, scaled fixed-point decimal with the same
// representation as Price. It is semantically non-negative in every
// reachable engine state; a Quantity held by a live order is strictly
// positive.
type Quantity int64

const (
	QuantityInvalid Quantity = Quantity(math.MinInt64)
	QuantityMin     Quantity = QuantityInvalid + 1
	QuantityMax     Quantity = Quantity(math.MaxInt64)
	QuantityZero    Quantity = 0
)

// ParseQuantity parses a decimal string like "5.0000" into a Quantity.
func ParseQuantity(s string) (Quantity, error) {
	raw, err := parseScaled(s)
	if err != nil {
		return QuantityInvalid, err
	}
	return Quantity(raw), nil
}

// QuantityFromFloat converts x via round_toward_zero(x * Scale). Kept for
// fixture construction only.
func QuantityFromFloat(x float64) Quantity {
	return Quantity(fromFloat(x))
}

func (q Quantity) Raw() int64 { return int64(q) }

func (q Quantity) Add(o Quantity) Quantity      { return q + o }
func (q Quantity) Sub(o Quantity) Quantity      { return q - o }
func (q Quantity) MulScalar(n int64) Quantity   { return Quantity(int64(q) * n) }
func (q Quantity) DivScalar(n int64) Quantity   { return Quantity(int64(q) / n) }

func (q Quantity) Less(o Quantity) bool           { return q < o }
func (q Quantity) LessOrEqual(o Quantity) bool    { return q <= o }
func (q Quantity) Greater(o Quantity) bool        { return q > o }
func (q Quantity) GreaterOrEqual(o Quantity) bool { return q >= o }
func (q Quantity) Equal(o Quantity) bool          { return q == o }

func (q Quantity) IsValid() bool {
	return q != QuantityInvalid && q > QuantityMin && q < QuantityMax
}

func (q Quantity) IsPositive() bool     { return q > QuantityZero }
func (q Quantity) IsZero() bool         { return q == QuantityZero }
func (q Quantity) IsNonNegative() bool  { return q >= QuantityZero }

func (q Quantity) String() string {
	switch q {
	case QuantityInvalid:
		return "INVALID"
	case QuantityMin:
		return "MIN"
	case QuantityMax:
		return "MAX"
	}
	return formatScaled(int64(q))
}

// MinQuantity returns the smaller of two quantities, used by the matching walk to
// compute a fill size.
func MinQuantity(a, b Quantity) Quantity {
	if a < b {
		return a
	}
	return b
}
