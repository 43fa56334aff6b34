// README: Free-vehicle availability filter (half-open interval exclusion).
package fleet

import "carrental/internal/types"

// Overlaps reports whether [s1, e1) and [s2, e2) share at least one instant.
// Touching endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 types.Date) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// FreeVehicles returns the vehicles of fleet that have no booked interval overlapping
// [start, end). A vehicle is excluded when some interval for its id satisfies
// existingEnd > start AND existingStart < end. Fleet order is preserved.
func FreeVehicles(fleet []Vehicle, booked []BookedInterval, start, end types.Date) []Vehicle {
	busy := make(map[int64]struct{}, len(booked))
	for _, b := range booked {
		if b.End.After(start) && b.Start.Before(end) {
			busy[b.CarID] = struct{}{}
		}
	}
	free := make([]Vehicle, 0, len(fleet))
	for _, v := range fleet {
		if _, taken := busy[v.ID]; taken {
			continue
		}
		free = append(free, v)
	}
	return free
}
