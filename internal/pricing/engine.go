package pricing

import (
	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/pkg/money"
)

// Warning предупреждение о данных, не прерывающее расчёт
type Warning string

const (
	// WarningDiscountClamped скидка больше подытога, обрезана до подытога
	WarningDiscountClamped Warning = "discount_clamped"
)

// StopCost стоимостные поля одной остановки
type StopCost struct {
	FlatCost      money.Cents
	PerPersonCost money.Cents
}

// LineItem дополнительная позиция (quantity * unit_price)
type LineItem struct {
	Quantity  int
	UnitPrice money.Cents
}

// Rates ставки расчёта в процентах
type Rates struct {
	TaxRatePct  money.Percent
	GratuityPct money.Percent
	DepositPct  money.Percent
}

// Input полный снимок данных для расчёта
type Input struct {
	Stops      []StopCost
	Inclusions []LineItem
	PartySize  int
	Discount   money.Cents

	TaxRatePct  money.Percent
	GratuityPct money.Percent
	DepositPct  money.Percent
}

// Totals результат расчёта, все суммы в центах
type Totals struct {
	StopsTotal      money.Cents
	InclusionsTotal money.Cents
	Subtotal        money.Cents
	Discount        money.Cents // фактически применённая скидка
	AfterDiscount   money.Cents
	Taxes           money.Cents
	Gratuity        money.Cents
	Total           money.Cents
	Deposit         money.Cents
	Balance         money.Cents
	Warnings        []Warning
}

// HasWarning true, если расчёт вернул предупреждение w
func (t Totals) HasWarning(w Warning) bool {
	for _, got := range t.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

// ProposalTotals суммы в виде, который хранится в предложении
func (t Totals) ProposalTotals() domain.ProposalTotals {
	return domain.ProposalTotals{
		Subtotal:      t.Subtotal,
		Taxes:         t.Taxes,
		Gratuity:      t.Gratuity,
		Total:         t.Total,
		DepositAmount: t.Deposit,
		Balance:       t.Balance,
	}
}

// ComputeTotals чистая функция расчёта стоимости.
// Налог, чаевые и депозит округляются до цента, balance = total - deposit точно.
func ComputeTotals(in Input) (Totals, error) {
	if err := validate(in); err != nil {
		return Totals{}, err
	}

	var t Totals

	// 1. Остановки
	for _, s := range in.Stops {
		t.StopsTotal += s.FlatCost + s.PerPersonCost.MulInt(in.PartySize)
	}

	// 2. Дополнительные позиции
	for _, item := range in.Inclusions {
		t.InclusionsTotal += item.UnitPrice.MulInt(item.Quantity)
	}

	t.Subtotal = t.StopsTotal + t.InclusionsTotal

	// 3. Скидка не может сделать сумму отрицательной
	t.Discount = in.Discount
	if t.Discount > t.Subtotal {
		t.Discount = t.Subtotal
		t.Warnings = append(t.Warnings, WarningDiscountClamped)
	}
	t.AfterDiscount = t.Subtotal - t.Discount

	// 4. Налог и чаевые считаются от суммы после скидки
	t.Taxes = in.TaxRatePct.Of(t.AfterDiscount)
	t.Gratuity = in.GratuityPct.Of(t.AfterDiscount)
	t.Total = t.AfterDiscount + t.Taxes + t.Gratuity

	// 5. Депозит и остаток
	t.Deposit = in.DepositPct.Of(t.Total)
	t.Balance = t.Total - t.Deposit

	return t, nil
}

func validate(in Input) error {
	if in.PartySize <= 0 {
		return domain.NewValidationError("party_size", "must be positive, got %d", in.PartySize)
	}
	for i, s := range in.Stops {
		if s.FlatCost.IsNegative() {
			return domain.NewValidationError("flat_cost", "stop %d: must be non-negative", i)
		}
		if s.PerPersonCost.IsNegative() {
			return domain.NewValidationError("per_person_cost", "stop %d: must be non-negative", i)
		}
	}
	for i, item := range in.Inclusions {
		if item.Quantity < 0 {
			return domain.NewValidationError("quantity", "inclusion %d: must be non-negative", i)
		}
		if item.UnitPrice.IsNegative() {
			return domain.NewValidationError("unit_price", "inclusion %d: must be non-negative", i)
		}
	}
	if in.Discount.IsNegative() {
		return domain.NewValidationError("discount_amount", "must be non-negative")
	}
	if in.TaxRatePct.IsNegative() {
		return domain.NewValidationError("tax_rate", "must be non-negative")
	}
	if in.GratuityPct.IsNegative() {
		return domain.NewValidationError("gratuity_percentage", "must be non-negative")
	}
	if in.DepositPct.IsNegative() || in.DepositPct.ExceedsHundred() {
		return domain.NewValidationError("deposit_percentage", "must be between 0 and 100")
	}
	return nil
}
