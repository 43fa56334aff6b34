// README: Price engine: base daily rate followed by an ordered fold of multiplicative stages.
package pricing

import (
	"math"

	"carrental/internal/modules/fleet"
)

var dailyRates = map[fleet.Category]int64{
	fleet.CategoryA: 80,
	fleet.CategoryB: 70,
	fleet.CategoryC: 60,
	fleet.CategoryD: 50,
	fleet.CategoryE: 40,
}

// DailyRate returns the per-day base price of a category.
func DailyRate(c fleet.Category) (int64, bool) {
	rate, ok := dailyRates[c]
	return rate, ok
}

const (
	StageLowMileage       = "low_mileage"
	StageHighMileage      = "high_mileage"
	StageYoungDriver      = "young_driver"
	StageSeniorDriver     = "senior_driver"
	StageExtraDrivers     = "extra_drivers"
	StageExtraInsurance   = "extra_insurance"
	StageScarcity         = "scarcity"
	StageFrequentCustomer = "frequent_customer"
)

// scarcityThresholdPct is the share of free vehicles in a category below which
// the scarcity surcharge applies.
const scarcityThresholdPct = 10.0

// Stage multiplies the running price by Factor when Applies holds.
type Stage struct {
	Name    string
	Applies func(Input) bool
	Factor  float64
}

// DefaultStages returns the pricing policy. Order matters: every factor multiplies the
// running price and rounding happens once, after the last stage.
func DefaultStages() []Stage {
	return []Stage{
		{Name: StageLowMileage, Factor: 0.95, Applies: func(in Input) bool {
			return in.Request.KmPerDay < 50
		}},
		{Name: StageHighMileage, Factor: 1.05, Applies: func(in Input) bool {
			return in.Request.KmPerDay > 150
		}},
		{Name: StageYoungDriver, Factor: 1.05, Applies: func(in Input) bool {
			return in.Request.DriverAge < 25
		}},
		{Name: StageSeniorDriver, Factor: 1.10, Applies: func(in Input) bool {
			return in.Request.DriverAge > 65
		}},
		{Name: StageExtraDrivers, Factor: 1.15, Applies: func(in Input) bool {
			return in.Request.ExtraDrivers > 0
		}},
		{Name: StageExtraInsurance, Factor: 1.20, Applies: func(in Input) bool {
			return in.Request.ExtraInsurance
		}},
		{Name: StageScarcity, Factor: 1.10, Applies: scarce},
		{Name: StageFrequentCustomer, Factor: 0.90, Applies: func(in Input) bool {
			return in.FrequentCustomer
		}},
	}
}

// scarce is skipped entirely for an empty category.
func scarce(in Input) bool {
	if in.TotalInCategory <= 0 {
		return false
	}
	pct := float64(in.MatchingVehicles) / float64(in.TotalInCategory) * 100
	return pct < scarcityThresholdPct
}

// Engine is stateless and safe for concurrent use.
type Engine struct {
	stages []Stage
}

func NewEngine(stages []Stage) Engine {
	return Engine{stages: stages}
}

func DefaultEngine() Engine {
	return NewEngine(DefaultStages())
}

// Compute prices in. An unknown category yields a zero base price and sets
// UnknownCategory; it is the caller's job to report it.
func (e Engine) Compute(in Input) Result {
	rate, ok := DailyRate(in.Request.Category)
	base := float64(rate * int64(in.Request.Days()))

	res := Result{Base: base, UnknownCategory: !ok, Applied: []AppliedStage{}}
	price := base
	for _, st := range e.stages {
		if !st.Applies(in) {
			continue
		}
		price *= st.Factor
		res.Applied = append(res.Applied, AppliedStage{Name: st.Name, Factor: st.Factor, PriceAfter: price})
	}
	res.Unrounded = price
	res.Price = RoundHalfUp(price)
	return res
}

// ComputePrice prices a request with the default policy.
func ComputePrice(req Request, matchingVehicles, totalInCategory int, frequentCustomer bool) int64 {
	return DefaultEngine().Compute(Input{
		Request:          req,
		MatchingVehicles: matchingVehicles,
		TotalInCategory:  totalInCategory,
		FrequentCustomer: frequentCustomer,
	}).Price
}

// RoundHalfUp rounds to the nearest integer with ties going up (346.5 -> 347).
func RoundHalfUp(x float64) int64 {
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	return int64(r)
}
