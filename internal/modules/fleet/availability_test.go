package fleet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"carrental/internal/types"
)

func jan(d int) types.Date {
	return types.NewDate(2024, time.January, d)
}

func ids(vs []Vehicle) []int64 {
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}

var testFleet = []Vehicle{
	{ID: 1, Category: CategoryA, Brand: "Audi", Model: "A8"},
	{ID: 2, Category: CategoryC, Brand: "Fiat", Model: "Tipo"},
	{ID: 3, Category: CategoryC, Brand: "Ford", Model: "Focus"},
	{ID: 4, Category: CategoryE, Brand: "Fiat", Model: "Panda"},
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 types.Date
		want           bool
	}{
		{"inside", jan(1), jan(10), jan(5), jan(8), true},
		{"covering", jan(5), jan(8), jan(1), jan(10), true},
		{"partial left", jan(1), jan(10), jan(8), jan(12), true},
		{"touching end", jan(1), jan(10), jan(10), jan(15), false},
		{"touching start", jan(10), jan(15), jan(1), jan(10), false},
		{"disjoint", jan(1), jan(3), jan(5), jan(8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1), "overlap must be symmetric")
		})
	}
}

func TestFreeVehicles_OverlapExcluded(t *testing.T) {
	booked := []BookedInterval{{CarID: 2, Start: jan(1), End: jan(10)}}

	free := FreeVehicles(testFleet, booked, jan(5), jan(8))
	assert.Equal(t, []int64{1, 3, 4}, ids(free))
}

func TestFreeVehicles_TouchingBoundaryIncluded(t *testing.T) {
	booked := []BookedInterval{{CarID: 2, Start: jan(1), End: jan(10)}}

	free := FreeVehicles(testFleet, booked, jan(10), jan(15))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(free))

	// A booking starting exactly when the query ends does not overlap either.
	booked = []BookedInterval{{CarID: 3, Start: jan(15), End: jan(20)}}
	free = FreeVehicles(testFleet, booked, jan(10), jan(15))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(free))
}

func TestFreeVehicles_ZeroLengthWindow(t *testing.T) {
	booked := []BookedInterval{
		{CarID: 1, Start: jan(1), End: jan(10)},
		{CarID: 2, Start: jan(5), End: jan(6)},
		{CarID: 3, Start: jan(1), End: jan(5)},
	}

	// Only bookings strictly spanning the instant exclude a car.
	free := FreeVehicles(testFleet, booked, jan(5), jan(5))
	assert.Equal(t, []int64{2, 3, 4}, ids(free))
}

func TestFreeVehicles_MultipleBookingsSameCar(t *testing.T) {
	booked := []BookedInterval{
		{CarID: 4, Start: jan(1), End: jan(3)},
		{CarID: 4, Start: jan(20), End: jan(25)},
		{CarID: 4, Start: jan(6), End: jan(9)},
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(FreeVehicles(testFleet, booked, jan(3), jan(6))))
	assert.Equal(t, []int64{1, 2, 3}, ids(FreeVehicles(testFleet, booked, jan(3), jan(7))))
}

func TestFreeVehicles_UnknownCarIgnored(t *testing.T) {
	booked := []BookedInterval{{CarID: 99, Start: jan(1), End: jan(31)}}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(FreeVehicles(testFleet, booked, jan(2), jan(4))))
}

func TestFreeVehicles_EmptyInputs(t *testing.T) {
	assert.Empty(t, FreeVehicles(nil, nil, jan(1), jan(2)))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(FreeVehicles(testFleet, nil, jan(1), jan(2))))
}
