package create_proposal

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TourService/internal/domain"
	"github.com/m04kA/SMC-TourService/internal/integrations/venues"
)

// ProposalRepository интерфейс репозитория предложений
type ProposalRepository interface {
	Create(ctx context.Context, p *domain.TripProposal) (*domain.TripProposal, error)
	CreateDay(ctx context.Context, proposalID int64, day domain.Day) (int64, error)
	CreateStop(ctx context.Context, dayID int64, stop domain.Stop) (int64, error)
	CreateGuest(ctx context.Context, proposalID int64, guest domain.Guest) (int64, error)
	CreateInclusion(ctx context.Context, proposalID int64, inc domain.Inclusion) (int64, error)
}

// VenueDirectory справочник площадок
type VenueDirectory interface {
	GetVenueWithGracefulDegradation(ctx context.Context, kind domain.VenueKind, id int64) (*venues.Venue, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
