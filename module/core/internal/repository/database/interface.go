package database

import (
	"context"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
)

// TelemetryRepository is an append-only log of enriched car updates. It is
// never read back by the detectors; it only serves the query API.
type TelemetryRepository interface {
	Insert(ctx context.Context, u *domain.CarUpdate) error
	GetLatest(ctx context.Context, carID string) (*domain.CarUpdate, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.CarUpdate, error)
	GetAllCars(ctx context.Context) ([]domain.Car, error)
}
