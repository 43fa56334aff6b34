// README: Pricing request/result definitions for rental quotes.
package pricing

import (
	"carrental/internal/modules/fleet"
	"carrental/internal/types"
)

// Request is the booking configuration a customer submits to the configurator.
type Request struct {
	StartDate      types.Date     `json:"start_date"`
	EndDate        types.Date     `json:"end_date"`
	Category       fleet.Category `json:"category"`
	DriverAge      int            `json:"driver_age"`
	ExtraDrivers   int            `json:"extra_drivers"`
	ExtraInsurance bool           `json:"extra_insurance"`
	KmPerDay       int            `json:"km_per_day"`
}

// Days is the rental length in whole days, end date excluded.
func (r Request) Days() int {
	return r.StartDate.DaysUntil(r.EndDate)
}

// Input is everything the engine needs: the request plus fleet statistics and the
// customer's loyalty status, all gathered by the caller.
type Input struct {
	Request          Request
	MatchingVehicles int
	TotalInCategory  int
	FrequentCustomer bool
}

type AppliedStage struct {
	Name       string  `json:"name"`
	Factor     float64 `json:"factor"`
	PriceAfter float64 `json:"price_after"`
}

type Result struct {
	Price           int64          `json:"price"`
	Base            float64        `json:"base"`
	Unrounded       float64        `json:"unrounded"`
	Applied         []AppliedStage `json:"applied"`
	UnknownCategory bool           `json:"-"`
}
