package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParsePrice разбирает денежную сумму из десятичной строки.
// Пустая строка и нечисловые значения отклоняются как невалидная цена.
func ParsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, ErrProductPriceInvalid
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("price %q: %w", raw, ErrProductPriceInvalid)
	}
	return price, nil
}
