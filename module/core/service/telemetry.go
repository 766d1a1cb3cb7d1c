package service

import (
	"context"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/repository/database"
)

// TelemetryService exposes the append-only car update history.
type TelemetryService struct {
	repo database.TelemetryRepository
}

func NewTelemetryService(repo database.TelemetryRepository) *TelemetryService {
	return &TelemetryService{repo: repo}
}

func (s *TelemetryService) RecordUpdate(ctx context.Context, u *domain.CarUpdate) error {
	return s.repo.Insert(ctx, u)
}

func (s *TelemetryService) GetLatest(ctx context.Context, carID string) (*domain.CarUpdate, error) {
	return s.repo.GetLatest(ctx, carID)
}

func (s *TelemetryService) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.CarUpdate, error) {
	return s.repo.GetHistory(ctx, query)
}

func (s *TelemetryService) GetAllCars(ctx context.Context) ([]domain.Car, error) {
	return s.repo.GetAllCars(ctx)
}
