// README: Pricing service wraps the engine with stage-level logging.
package pricing

import (
	"context"

	"github.com/rs/zerolog"
)

type Service struct {
	engine Engine
	log    zerolog.Logger
}

func NewService(engine Engine, log zerolog.Logger) *Service {
	return &Service{engine: engine, log: log.With().Str("module", "pricing").Logger()}
}

func (s *Service) Quote(ctx context.Context, in Input) Result {
	res := s.engine.Compute(in)

	if res.UnknownCategory {
		s.log.Error().
			Str("category", string(in.Request.Category)).
			Msg("pricing configuration error: category has no daily rate, base price is 0")
	}

	if e := s.log.Debug(); e.Enabled() {
		e.Str("category", string(in.Request.Category)).
			Int("days", in.Request.Days()).
			Float64("base", res.Base).
			Int("matching", in.MatchingVehicles).
			Int("total_in_category", in.TotalInCategory).
			Bool("frequent", in.FrequentCustomer).
			Interface("stages", res.Applied).
			Float64("unrounded", res.Unrounded).
			Int64("price", res.Price).
			Msg("price computed")
	}
	return res
}
