// README: Fleet store backed by PostgreSQL (vehicles + booked rental intervals).
package fleet

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"carrental/internal/types"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	query, args, err := psql.
		Select("id", "category", "brand", "model").
		From("vehicles").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []Vehicle{}
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.Category, &v.Brand, &v.Model); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// ListBookedIntervals returns the rentals overlapping [start, end). The predicate is the
// same strict test FreeVehicles applies, so the result is already narrowed in SQL.
func (s *Store) ListBookedIntervals(ctx context.Context, start, end types.Date) ([]BookedInterval, error) {
	query, args, err := psql.
		Select("car_id", "start_date", "end_date").
		From("rentals").
		Where(sq.And{
			sq.Gt{"end_date": start},
			sq.Lt{"start_date": end},
		}).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list booked intervals: %w", err)
	}
	defer rows.Close()

	booked := []BookedInterval{}
	for rows.Next() {
		var b BookedInterval
		if err := rows.Scan(&b.CarID, &b.Start, &b.End); err != nil {
			return nil, fmt.Errorf("scan booked interval: %w", err)
		}
		booked = append(booked, b)
	}
	return booked, rows.Err()
}
