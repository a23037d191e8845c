package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type PriceClass int

const (
	PriceInvalid PriceClass = iota
	PriceFree
	PricePaid
)

var ErrInvalidPrice = errors.New("invalid price")

// ParsePrice interprets a marketplace price. Null, empty and numerically zero
// prices are free. Negative and non-numeric prices are invalid and must never be
// offered for purchase.
func ParsePrice(raw json.RawMessage) (decimal.Decimal, PriceClass, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, PriceFree, nil
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, PriceInvalid, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return decimal.Zero, PriceFree, nil
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(raw)
	default:
		return decimal.Zero, PriceInvalid, fmt.Errorf("%w: unsupported json value %s", ErrInvalidPrice, string(raw))
	}

	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, PriceInvalid, fmt.Errorf("%w: %q", ErrInvalidPrice, text)
	}
	switch price.Sign() {
	case 0:
		return decimal.Zero, PriceFree, nil
	case 1:
		return price, PricePaid, nil
	default:
		return decimal.Zero, PriceInvalid, fmt.Errorf("%w: negative %s", ErrInvalidPrice, price.String())
	}
}

// FormatPrice renders whole amounts without decimals and everything else with two.
func FormatPrice(price decimal.Decimal) string {
	if price.Equal(price.Truncate(0)) {
		return price.Truncate(0).String()
	}
	return price.StringFixed(2)
}
