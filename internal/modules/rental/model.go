// README: Rental aggregate: one car booked by one user for a date range.
package rental

import (
	"errors"
	"time"

	"carrental/internal/modules/fleet"
	"carrental/internal/types"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("rental not found")
	ErrForbidden    = errors.New("rental belongs to another user")
	ErrConflict     = errors.New("car already booked for the requested dates")
	ErrInvalidState = errors.New("rental already started")
)

// FrequentCustomerThreshold is the number of completed rentals a customer must exceed
// to receive the loyalty discount.
const FrequentCustomerThreshold = 3

// Rental mirrors the rentals table. The JSON names are the ones the booking client uses.
type Rental struct {
	ID             int64          `json:"id"`
	CarID          int64          `json:"carid"`
	UserID         int64          `json:"userid"`
	StartDate      types.Date     `json:"startdate"`
	EndDate        types.Date     `json:"enddate"`
	Category       fleet.Category `json:"category"`
	DriverAge      int            `json:"driverage"`
	ExtraDrivers   int            `json:"extradrivers"`
	KmPerDay       int            `json:"km"`
	ExtraInsurance bool           `json:"extrainsurance"`
	Price          int64          `json:"price"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Days is the rental length, end date excluded.
func (r Rental) Days() int {
	return r.StartDate.DaysUntil(r.EndDate)
}

// Cancellable reports whether the rental can still be cancelled on today: only rentals
// that have not started yet, or start today, can be.
func (r Rental) Cancellable(today types.Date) bool {
	return !r.StartDate.Before(today)
}
