package payments

import "github.com/m04kA/SMC-TourService/pkg/money"

// Purpose назначение платежа, хранится в метаданных намерения
type Purpose string

const (
	PurposeDeposit Purpose = "deposit"
	PurposeFinal   Purpose = "final"
)

// Ключи метаданных платёжного намерения
const (
	metaBookingID = "booking_id"
	metaPurpose   = "purpose"
)

// IntentRequest параметры нового платёжного намерения
type IntentRequest struct {
	BookingID      int64
	Purpose        Purpose
	Amount         money.Cents
	Currency       string
	IdempotencyKey string
}

// Outcome результат проверки платежа. BookingID и Purpose читаются из
// метаданных; у намерений, созданных не сервисом, они пустые.
type Outcome struct {
	Ref       string
	Status    string
	Succeeded bool
	Amount    money.Cents
	Currency  string
	BookingID int64
	Purpose   Purpose
}
