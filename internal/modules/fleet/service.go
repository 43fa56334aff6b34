// README: Fleet service: catalog listing (cache-first) and free-vehicle queries.
package fleet

import (
	"context"

	"github.com/rs/zerolog"

	"carrental/internal/types"
)

// Repository is the storage collaborator the service reads from.
type Repository interface {
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	ListBookedIntervals(ctx context.Context, start, end types.Date) ([]BookedInterval, error)
}

type Service struct {
	store Repository
	cache *Cache
	log   zerolog.Logger
}

// NewService builds the fleet service. cache may be nil, in which case every listing
// goes to the store.
func NewService(store Repository, cache *Cache, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		cache: cache,
		log:   log.With().Str("module", "fleet").Logger(),
	}
}

// ListVehicles returns the whole fleet. Vehicles never change once created, so a cached
// listing is served when available; cache failures are logged and bypassed.
func (s *Service) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	if s.cache != nil {
		vehicles, ok, err := s.cache.Vehicles(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("fleet cache read failed")
		}
		if ok {
			return vehicles, nil
		}
	}

	vehicles, err := s.store.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.StoreVehicles(ctx, vehicles); err != nil {
			s.log.Warn().Err(err).Msg("fleet cache write failed")
		}
	}
	return vehicles, nil
}

// Browse lists the fleet narrowed by categories and brands.
func (s *Service) Browse(ctx context.Context, cats []Category, brands []string) ([]Vehicle, error) {
	for _, c := range cats {
		if !c.Valid() {
			return nil, ErrBadRequest
		}
	}
	vehicles, err := s.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(vehicles, cats, brands), nil
}

func (s *Service) Brands(ctx context.Context) ([]string, error) {
	vehicles, err := s.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	return Brands(vehicles), nil
}

// FreeVehicles returns the vehicles with no rental overlapping [start, end).
func (s *Service) FreeVehicles(ctx context.Context, start, end types.Date) ([]Vehicle, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, ErrBadRequest
	}
	vehicles, err := s.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	booked, err := s.store.ListBookedIntervals(ctx, start, end)
	if err != nil {
		return nil, err
	}
	free := FreeVehicles(vehicles, booked, start, end)
	s.log.Debug().
		Str("start", start.String()).
		Str("end", end.String()).
		Int("fleet", len(vehicles)).
		Int("booked", len(booked)).
		Int("free", len(free)).
		Msg("free vehicles computed")
	return free, nil
}
