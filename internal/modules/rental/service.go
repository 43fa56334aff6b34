// README: Rental service: booking persistence, listing, cancellation and loyalty status.
package rental

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"carrental/internal/modules/fleet"
	"carrental/internal/types"
)

// Repository is the persistence the service needs; *Store implements it.
type Repository interface {
	Create(ctx context.Context, r *Rental) error
	Get(ctx context.Context, id int64) (*Rental, error)
	ListByUser(ctx context.Context, userID int64) ([]Rental, error)
	Delete(ctx context.Context, id, userID int64) error
	CountEndedBefore(ctx context.Context, userID int64, day types.Date) (int, error)
}

type Service struct {
	store Repository
	now   func() time.Time
	log   zerolog.Logger
}

func NewService(store Repository, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		log:   log.With().Str("module", "rental").Logger(),
	}
}

type CreateCommand struct {
	UserID         int64
	CarID          int64
	StartDate      types.Date
	EndDate        types.Date
	Category       fleet.Category
	DriverAge      int
	ExtraDrivers   int
	KmPerDay       int
	ExtraInsurance bool
	Price          int64
}

type CancelCommand struct {
	RentalID int64
	UserID   int64
}

func (s *Service) today() types.Date {
	return types.DateOf(s.now())
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Rental, error) {
	if cmd.UserID <= 0 || cmd.CarID <= 0 || !cmd.Category.Valid() {
		return nil, ErrBadRequest
	}
	if cmd.StartDate.IsZero() || !cmd.EndDate.After(cmd.StartDate) || cmd.Price < 0 {
		return nil, ErrBadRequest
	}

	r := &Rental{
		CarID:          cmd.CarID,
		UserID:         cmd.UserID,
		StartDate:      cmd.StartDate,
		EndDate:        cmd.EndDate,
		Category:       cmd.Category,
		DriverAge:      cmd.DriverAge,
		ExtraDrivers:   cmd.ExtraDrivers,
		KmPerDay:       cmd.KmPerDay,
		ExtraInsurance: cmd.ExtraInsurance,
		Price:          cmd.Price,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("rental_id", r.ID).
		Int64("car_id", r.CarID).
		Int64("user_id", r.UserID).
		Str("start", r.StartDate.String()).
		Str("end", r.EndDate.String()).
		Int64("price", r.Price).
		Msg("rental created")
	return r, nil
}

func (s *Service) Get(ctx context.Context, id, userID int64) (*Rental, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrForbidden
	}
	return r, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Rental, error) {
	if userID <= 0 {
		return nil, ErrBadRequest
	}
	return s.store.ListByUser(ctx, userID)
}

// Cancel deletes a rental owned by the caller that has not started yet.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	r, err := s.Get(ctx, cmd.RentalID, cmd.UserID)
	if err != nil {
		return err
	}
	if !r.Cancellable(s.today()) {
		return ErrInvalidState
	}
	if err := s.store.Delete(ctx, r.ID, cmd.UserID); err != nil {
		return err
	}
	s.log.Info().Int64("rental_id", r.ID).Int64("user_id", cmd.UserID).Msg("rental cancelled")
	return nil
}

// IsFrequentCustomer reports whether the user has more than FrequentCustomerThreshold
// rentals that ended strictly before today.
func (s *Service) IsFrequentCustomer(ctx context.Context, userID int64) (bool, error) {
	n, err := s.store.CountEndedBefore(ctx, userID, s.today())
	if err != nil {
		return false, err
	}
	return n > FrequentCustomerThreshold, nil
}
