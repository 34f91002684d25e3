package shared

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places kept for stored amounts
const MoneyScale = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds an amount to MoneyScale places
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Percentage returns part/whole*100 rounded to two places, or zero when whole is zero
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// ValidatePositiveAmount rejects zero and negative amounts
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewDomainError("INVALID_AMOUNT", "Amount must be greater than zero")
	}
	if !amount.Equal(RoundMoney(amount)) {
		return NewDomainError("INVALID_AMOUNT", "Amount cannot have more than 2 decimal places")
	}
	return nil
}
