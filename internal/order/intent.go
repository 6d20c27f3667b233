package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// ParseSide accepts the aliases alert platforms emit. Empty input means
// buy; anything else unrecognized is an error.
func ParseSide(raw string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "buy", "long":
		return Buy, nil
	case "sell", "short":
		return Sell, nil
	default:
		return Buy, fmt.Errorf("unknown side %q", raw)
	}
}

// Intent is a validated order request, decoupled from the webhook wire
// format and from any particular submission shape.
type Intent struct {
	MarketIndex      int
	SizeDecimals     int
	Side             Side
	Quantity         decimal.Decimal
	ClientOrderIndex int64
}

// BaseUnits converts the decimal quantity to the market's integer base
// units, flooring any fraction below the market's scale. The result is
// strictly positive or an error.
func (i Intent) BaseUnits() (int64, error) {
	scale := i.SizeDecimals
	if scale <= 0 {
		scale = DefaultScale
	}
	units := i.Quantity.Shift(int32(scale)).Floor()
	if !units.IsInteger() {
		return 0, fmt.Errorf("quantity %s did not floor to an integer", i.Quantity)
	}
	v := units.IntPart()
	if v <= 0 {
		return 0, fmt.Errorf("quantity %s is below the minimum size step", i.Quantity)
	}
	return v, nil
}

// DefaultScale matches markets that do not advertise a size scale.
const DefaultScale = 8

// ParseQuantity accepts a decimal string and rejects non-positive values.
func ParseQuantity(raw string) (decimal.Decimal, error) {
	q, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("qty is not a number: %w", err)
	}
	if q.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("qty must be > 0")
	}
	return q, nil
}
