package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency валюта по умолчанию (ISO 4217, нижний регистр как у платёжного провайдера)
const DefaultCurrency = "usd"

var (
	// ErrInvalidAmount возвращается при некорректной денежной сумме
	ErrInvalidAmount = errors.New("money: invalid amount")

	// ErrInvalidPercent возвращается при некорректном процентном значении
	ErrInvalidPercent = errors.New("money: invalid percent")

	hundred = decimal.NewFromInt(100)
)

// Cents денежная сумма в минорных единицах (центах).
// Вся арифметика ведётся в целых числах, в десятичный вид переводится только при выводе.
type Cents int64

// FromDecimalString парсит сумму вида "283.14" (не более двух знаков после точки)
func FromDecimalString(s string) (Cents, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, fmt.Errorf("%w: more than two decimal places in %q", ErrInvalidAmount, s)
	}
	return Cents(d.Mul(hundred).IntPart()), nil
}

// FromUnits сумма из целых единиц валюты (долларов)
func FromUnits(units int64) Cents {
	return Cents(units * 100)
}

// MulInt умножает сумму на целое число (количество, размер группы)
func (c Cents) MulInt(n int) Cents {
	return c * Cents(n)
}

// IsNegative true для отрицательных сумм
func (c Cents) IsNegative() bool {
	return c < 0
}

// Decimal представление суммы в единицах валюты
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String форматирует сумму с двумя знаками: "283.14"
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Format форматирует сумму для показа клиенту: "$283.14"
func Format(c Cents, currency string) string {
	switch strings.ToLower(currency) {
	case "", "usd":
		if c < 0 {
			return "-$" + (-c).String()
		}
		return "$" + c.String()
	default:
		return c.String() + " " + strings.ToUpper(currency)
	}
}

// Percent процентная ставка (8.9 означает 8.9%)
type Percent struct {
	decimal.Decimal
}

// NewPercent создаёт ставку из числа с плавающей точкой (значения из конфигурации)
func NewPercent(v float64) Percent {
	return Percent{decimal.NewFromFloat(v)}
}

// ParsePercent парсит ставку из строки "8.9"
func ParsePercent(s string) (Percent, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Percent{}, fmt.Errorf("%w: %q", ErrInvalidPercent, s)
	}
	return Percent{d}, nil
}

// Of применяет ставку к сумме с округлением до цента (половина от нуля)
func (p Percent) Of(c Cents) Cents {
	return Cents(decimal.NewFromInt(int64(c)).Mul(p.Decimal).Div(hundred).Round(0).IntPart())
}

// ExceedsHundred true, если ставка больше 100%
func (p Percent) ExceedsHundred() bool {
	return p.Decimal.GreaterThan(hundred)
}
