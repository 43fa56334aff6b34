// README: Rental store backed by PostgreSQL; bookings are serialised per car.
package rental

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"carrental/internal/types"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var rentalColumns = []string{
	"id", "car_id", "user_id", "start_date", "end_date", "category",
	"driver_age", "extra_drivers", "km_per_day", "extra_insurance", "price", "created_at",
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts r unless the car already has a rental overlapping [r.StartDate, r.EndDate).
// A transaction-scoped advisory lock on the car id makes the check and the insert atomic
// with respect to concurrent bookings of the same car. On success r.ID and r.CreatedAt
// are filled in.
func (s *Store) Create(ctx context.Context, r *Rental) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create rental: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, r.CarID); err != nil {
		return fmt.Errorf("lock car %d: %w", r.CarID, err)
	}

	query, args, err := psql.
		Select("1").
		Prefix("SELECT EXISTS (").
		From("rentals").
		Where(sq.Eq{"car_id": r.CarID}).
		Where(sq.Gt{"end_date": r.StartDate}).
		Where(sq.Lt{"start_date": r.EndDate}).
		Suffix(")").
		ToSql()
	if err != nil {
		return err
	}
	var overlapping bool
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&overlapping); err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if overlapping {
		return ErrConflict
	}

	query, args, err = psql.
		Insert("rentals").
		Columns("car_id", "user_id", "start_date", "end_date", "category",
			"driver_age", "extra_drivers", "km_per_day", "extra_insurance", "price").
		Values(r.CarID, r.UserID, r.StartDate, r.EndDate, string(r.Category),
			r.DriverAge, r.ExtraDrivers, r.KmPerDay, r.ExtraInsurance, r.Price).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&r.ID, &r.CreatedAt); err != nil {
		return fmt.Errorf("insert rental: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Get(ctx context.Context, id int64) (*Rental, error) {
	query, args, err := psql.
		Select(rentalColumns...).
		From("rentals").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	r, err := scanRental(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rental %d: %w", id, err)
	}
	return r, nil
}

func (s *Store) ListByUser(ctx context.Context, userID int64) ([]Rental, error) {
	query, args, err := psql.
		Select(rentalColumns...).
		From("rentals").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("start_date", "id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	defer rows.Close()

	rentals := []Rental{}
	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rental: %w", err)
		}
		rentals = append(rentals, *r)
	}
	return rentals, rows.Err()
}

// Delete removes the rental id owned by userID. It reports ErrNotFound when no such
// row exists.
func (s *Store) Delete(ctx context.Context, id, userID int64) error {
	query, args, err := psql.
		Delete("rentals").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete rental %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountEndedBefore counts the user's rentals whose end date is strictly before day.
func (s *Store) CountEndedBefore(ctx context.Context, userID int64, day types.Date) (int, error) {
	query, args, err := psql.
		Select("COUNT(*)").
		From("rentals").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Lt{"end_date": day}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ended rentals: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*Rental, error) {
	var r Rental
	err := row.Scan(
		&r.ID, &r.CarID, &r.UserID, &r.StartDate, &r.EndDate, &r.Category,
		&r.DriverAge, &r.ExtraDrivers, &r.KmPerDay, &r.ExtraInsurance, &r.Price, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
