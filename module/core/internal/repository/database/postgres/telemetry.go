package postgres

import (
	"context"
	"database/sql"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/repository/database"
)

var _ database.TelemetryRepository = (*TelemetryRepo)(nil)

type TelemetryRepo struct {
	db *sql.DB
}

func NewTelemetryRepo(db *sql.DB) *TelemetryRepo {
	return &TelemetryRepo{db: db}
}

func (r *TelemetryRepo) Insert(ctx context.Context, u *domain.CarUpdate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO car_updates (car_id, latitude, longitude, speed_kmh, heading_deg, recorded_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.CarID, u.Latitude, u.Longitude, u.SpeedKmh, u.HeadingDeg, u.Timestamp,
	)
	return err
}

func (r *TelemetryRepo) GetLatest(ctx context.Context, carID string) (*domain.CarUpdate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT car_id, latitude, longitude, speed_kmh, heading_deg, recorded_at FROM car_updates WHERE car_id = $1 ORDER BY recorded_at DESC LIMIT 1`,
		carID,
	)

	var u domain.CarUpdate
	if err := row.Scan(&u.CarID, &u.Latitude, &u.Longitude, &u.SpeedKmh, &u.HeadingDeg, &u.Timestamp); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *TelemetryRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.CarUpdate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT car_id, latitude, longitude, speed_kmh, heading_deg, recorded_at FROM car_updates WHERE car_id = $1 AND recorded_at >= $2 AND recorded_at <= $3 ORDER BY recorded_at ASC`,
		query.CarID, domain.UnixSeconds(query.Start), domain.UnixSeconds(query.End),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.CarUpdate
	for rows.Next() {
		var u domain.CarUpdate
		if err := rows.Scan(&u.CarID, &u.Latitude, &u.Longitude, &u.SpeedKmh, &u.HeadingDeg, &u.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

func (r *TelemetryRepo) GetAllCars(ctx context.Context) ([]domain.Car, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT car_id FROM car_updates ORDER BY car_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Car
	for rows.Next() {
		var c domain.Car
		if err := rows.Scan(&c.CarID); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}
