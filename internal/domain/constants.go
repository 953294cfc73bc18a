package domain

// Значения по умолчанию для планирования и платежей
const (
	DefaultStopDurationMinutes     = 60
	DefaultMaxDailyDriverMinutes   = 10 * 60 // 10 часов в сутки
	DefaultMaxWeeklyDriverMinutes  = 60 * 60 // 60 часов в неделю
	DefaultFinalPaymentWindowHours = 48
	DefaultProposalValidityDays    = 14
	DefaultDepositPercentage       = 50
	DefaultCurrency                = "usd"
)

// Бизнес-ограничения для валидации
const (
	MaxPartySize                = 60
	MaxTripDays                 = 30
	MaxStopsPerDay              = 20
	MaxNotesLength              = 2000
	MaxTitleLength              = 200
	MaxCancellationReasonLength = 500
)

// Пороги возврата депозита при отмене (дни до тура)
const (
	FullRefundMinDays    = 45
	PartialRefundMinDays = 21
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Роли получателей уведомлений
const (
	RecipientDriver   = "driver"
	RecipientCustomer = "customer"
)

// Типы событий для уведомлений
const (
	EventTripAssigned   = "trip_assigned"
	EventTripUnassigned = "trip_unassigned"
)
