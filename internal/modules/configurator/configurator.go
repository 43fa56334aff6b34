// README: Configurator: turns a rental request into a priced proposal and books it.
package configurator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"carrental/internal/modules/fleet"
	"carrental/internal/modules/payment"
	"carrental/internal/modules/pricing"
	"carrental/internal/modules/rental"
	"carrental/internal/types"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrNoVehicleAvailable = errors.New("no vehicle available for the requested configuration")
	ErrPriceChanged       = errors.New("price changed since the quote")
)

const MinDriverAge = 18

type Fleet interface {
	ListVehicles(ctx context.Context) ([]fleet.Vehicle, error)
	FreeVehicles(ctx context.Context, start, end types.Date) ([]fleet.Vehicle, error)
}

type Rentals interface {
	IsFrequentCustomer(ctx context.Context, userID int64) (bool, error)
	Create(ctx context.Context, cmd rental.CreateCommand) (*rental.Rental, error)
}

type Pricer interface {
	Quote(ctx context.Context, in pricing.Input) pricing.Result
}

// Proposal is the answer to a configuration: how many cars match and what one costs.
type Proposal struct {
	Price            types.Money            `json:"price"`
	VehicleCount     int                    `json:"vehicle_count"`
	CarIDs           []int64                `json:"car_ids"`
	FrequentCustomer bool                   `json:"frequent_customer"`
	Stages           []pricing.AppliedStage `json:"stages"`
	Request          pricing.Request        `json:"request"`
}

type BookCommand struct {
	UserID  int64
	Request pricing.Request
	Payment payment.Details
	// ExpectedPrice is the amount the customer saw; nil skips the check.
	ExpectedPrice *int64
}

type Service struct {
	fleet    Fleet
	rentals  Rentals
	pricer   Pricer
	currency string
	log      zerolog.Logger
}

func NewService(fleet Fleet, rentals Rentals, pricer Pricer, currency string, log zerolog.Logger) *Service {
	return &Service{
		fleet:    fleet,
		rentals:  rentals,
		pricer:   pricer,
		currency: currency,
		log:      log.With().Str("module", "configurator").Logger(),
	}
}

func Validate(req pricing.Request) error {
	switch {
	case !req.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrBadRequest, req.Category)
	case req.StartDate.IsZero() || req.EndDate.IsZero():
		return fmt.Errorf("%w: start and end dates are required", ErrBadRequest)
	case !req.EndDate.After(req.StartDate):
		return fmt.Errorf("%w: end date must be after start date", ErrBadRequest)
	case req.DriverAge < MinDriverAge:
		return fmt.Errorf("%w: driver age must be at least %d", ErrBadRequest, MinDriverAge)
	case req.KmPerDay < 1:
		return fmt.Errorf("%w: km per day must be at least 1", ErrBadRequest)
	case req.ExtraDrivers < 0:
		return fmt.Errorf("%w: extra drivers cannot be negative", ErrBadRequest)
	}
	return nil
}

// Quote prices req for userID. A proposal with zero vehicles is not an error: the
// customer sees the price and that nothing is free.
func (s *Service) Quote(ctx context.Context, userID int64, req pricing.Request) (*Proposal, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	free, err := s.fleet.FreeVehicles(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	all, err := s.fleet.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	matching := fleet.Filter(free, []fleet.Category{req.Category}, nil)

	frequent := false
	if userID > 0 {
		if frequent, err = s.rentals.IsFrequentCustomer(ctx, userID); err != nil {
			return nil, err
		}
	}

	res := s.pricer.Quote(ctx, pricing.Input{
		Request:          req,
		MatchingVehicles: len(matching),
		TotalInCategory:  fleet.CountByCategory(all, req.Category),
		FrequentCustomer: frequent,
	})

	ids := make([]int64, 0, len(matching))
	for _, v := range matching {
		ids = append(ids, v.ID)
	}
	return &Proposal{
		Price:            types.NewMoney(res.Price, s.currency),
		VehicleCount:     len(matching),
		CarIDs:           ids,
		FrequentCustomer: frequent,
		Stages:           res.Applied,
		Request:          req,
	}, nil
}

// Book re-quotes on the server, checks the payment and stores a rental for the first
// car still free. A car taken by a concurrent booking is skipped in favour of the next.
func (s *Service) Book(ctx context.Context, cmd BookCommand) (*rental.Rental, error) {
	if cmd.UserID <= 0 {
		return nil, ErrBadRequest
	}
	p, err := s.Quote(ctx, cmd.UserID, cmd.Request)
	if err != nil {
		return nil, err
	}
	if p.VehicleCount == 0 {
		return nil, ErrNoVehicleAvailable
	}
	if cmd.ExpectedPrice != nil && *cmd.ExpectedPrice != p.Price.Amount {
		s.log.Info().
			Int64("expected", *cmd.ExpectedPrice).
			Int64("actual", p.Price.Amount).
			Int64("user_id", cmd.UserID).
			Msg("booking rejected: price changed")
		return nil, ErrPriceChanged
	}

	details := cmd.Payment
	details.Price = p.Price.Amount
	if err := payment.Validate(details); err != nil {
		return nil, err
	}

	for _, carID := range p.CarIDs {
		r, err := s.rentals.Create(ctx, rental.CreateCommand{
			UserID:         cmd.UserID,
			CarID:          carID,
			StartDate:      cmd.Request.StartDate,
			EndDate:        cmd.Request.EndDate,
			Category:       cmd.Request.Category,
			DriverAge:      cmd.Request.DriverAge,
			ExtraDrivers:   cmd.Request.ExtraDrivers,
			KmPerDay:       cmd.Request.KmPerDay,
			ExtraInsurance: cmd.Request.ExtraInsurance,
			Price:          p.Price.Amount,
		})
		if errors.Is(err, rental.ErrConflict) {
			s.log.Debug().Int64("car_id", carID).Msg("car taken concurrently, trying next")
			continue
		}
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, ErrNoVehicleAvailable
}
