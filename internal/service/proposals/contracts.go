package proposals

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
)

// ProposalRepository интерфейс репозитория предложений
type ProposalRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TripProposal, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.TripProposal, error)
	UpdateLifecycle(ctx context.Context, p *domain.TripProposal) error
	UpdateTotals(ctx context.Context, id int64, totals domain.ProposalTotals) error
	UpdateDateRange(ctx context.Context, id int64, start, end time.Time) error
	ReplaceDays(ctx context.Context, proposalID int64, days []domain.Day) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
