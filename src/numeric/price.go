package numeric

import "math"

// Price is a signed, scaled fixed-point decimal with four fractional
// digits. The raw int64 value v represents v / Scale.
type Price int64

const (
	// PriceInvalid is the sentinel for "no price" / "uninitialized". It is
	// never a value any live order or level carries.
	PriceInvalid Price = Price(math.MinInt64)
	// PriceMin is the smallest price the engine will accept as valid.
	PriceMin Price = PriceInvalid + 1
	// PriceMax is the largest price the engine will accept as valid.
	PriceMax Price = Price(math.MaxInt64)
	// PriceZero is the additive identity.
	PriceZero Price = 0
)

// ParsePrice parses a decimal string like "103.0000" into a Price.
func ParsePrice(s string) (Price, error) {
	raw, err := parseScaled(s)
	if err != nil {
		return PriceInvalid, err
	}
	return Price(raw), nil
}

// PriceFromFloat converts x via round_toward_zero(x * Scale). Kept for
// fixture construction only; the engine itself never touches float64.
func PriceFromFloat(x float64) Price {
	return Price(fromFloat(x))
}

// Raw returns the underlying scaled integer.
func (p Price) Raw() int64 { return int64(p) }

func (p Price) Add(o Price) Price { return p + o }
func (p Price) Sub(o Price) Price { return p - o }
func (p Price) MulScalar(n int64) Price { return Price(int64(p) * n) }
func (p Price) DivScalar(n int64) Price { return Price(int64(p) / n) }

func (p Price) Less(o Price) bool         { return p < o }
func (p Price) LessOrEqual(o Price) bool  { return p <= o }
func (p Price) Greater(o Price) bool      { return p > o }
func (p Price) GreaterOrEqual(o Price) bool { return p >= o }
func (p Price) Equal(o Price) bool        { return p == o }

// IsValid reports whether p falls strictly between PriceMin and PriceMax
// and is not the INVALID sentinel.
func (p Price) IsValid() bool {
	return p != PriceInvalid && p > PriceMin && p < PriceMax
}

func (p Price) IsPositive() bool { return p > PriceZero }

// String renders the literal tag for sentinels, otherwise
// "[-]whole.FFFF" with exactly four fractional digits.
func (p Price) String() string {
	switch p {
	case PriceInvalid:
		return "INVALID"
	case PriceMin:
		return "MIN"
	case PriceMax:
		return "MAX"
	}
	return formatScaled(int64(p))
}
