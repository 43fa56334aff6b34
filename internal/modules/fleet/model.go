// README: Fleet reference data: vehicle categories, vehicles and booked intervals.
package fleet

import (
	"errors"

	"carrental/internal/types"
)

var (
	ErrBadRequest = errors.New("bad request")
)

type Category string

const (
	CategoryA Category = "A"
	CategoryB Category = "B"
	CategoryC Category = "C"
	CategoryD Category = "D"
	CategoryE Category = "E"
)

var categories = []Category{CategoryA, CategoryB, CategoryC, CategoryD, CategoryE}

// Categories returns the fleet tiers in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Vehicle is immutable reference data owned by the fleet store.
type Vehicle struct {
	ID       int64    `json:"id"`
	Category Category `json:"category"`
	Brand    string   `json:"brand"`
	Model    string   `json:"model"`
}

// BookedInterval is the [Start, End) occupation of one car by an existing rental.
type BookedInterval struct {
	CarID int64
	Start types.Date
	End   types.Date
}
