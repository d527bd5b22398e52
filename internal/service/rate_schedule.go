package service

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Annual base rates and age coefficients for the motor vehicle tax,
// act 361/2014 Coll. as amended, valid for the 2024 and 2025 periods.

type displacementBracket struct {
	lo, hi float64 // cm3, half-open (lo, hi]
	rate   int64   // EUR per year
}

// Annex 1: passenger vehicles (L, M1) by engine displacement.
var passengerDisplacementRates = []displacementBracket{
	{0, 150, 50},
	{150, 900, 62},
	{900, 1200, 80},
	{1200, 1500, 115},
	{1500, 2000, 148},
	{2000, 3000, 180},
	{3000, math.Inf(1), 218},
}

type weightBracket struct {
	lo, hi float64 // tonnes, half-open (lo, hi]
	axles  int
	rate   int64
}

// Annex 1a: light goods vehicles (N1) by total weight and axle count.
var lightGoodsWeightRates = []weightBracket{
	{0, 2, 2, 115},
	{2, 4, 2, 148},
	{4, 6, 2, 180},
	{6, 8, 2, 218},
	{8, 10, 2, 253},
	{10, 12, 2, 295},
}

// Annex 1e: trailers and semi-trailers, flat per category.
var trailerRates = map[string]int64{
	"O1": 50,
	"O2": 115,
	"O3": 180,
	"O4": 295,
}

type ageBracket struct {
	lo, hi int // months since first registration, half-open [lo, hi)
	coef   string
}

// Age adjustment for the 2024 period: discounts for young vehicles,
// surcharges past 12 years.
var ageCoefficients2024 = []ageBracket{
	{0, 36, "0.75"},
	{36, 72, "0.80"},
	{72, 108, "0.85"},
	{108, 144, "1.00"},
	{144, 156, "1.10"},
	{156, math.MaxInt32, "1.20"},
}

// Age adjustment from the 2025 period on: surcharges only.
var ageCoefficients2025 = []ageBracket{
	{0, 36, "1.00"},
	{36, 72, "1.10"},
	{72, 108, "1.20"},
	{108, 144, "1.30"},
	{144, 180, "1.40"},
	{180, math.MaxInt32, "1.50"},
}

// RateSchedule resolves annual base rates and age coefficients from the
// statutory tables.
type RateSchedule struct{}

func NewRateSchedule() *RateSchedule {
	return &RateSchedule{}
}

// PassengerRate returns the annual rate for an L or M1 vehicle with the
// given engine displacement in cm3. A displacement outside every bracket
// takes the top rate.
func (s *RateSchedule) PassengerRate(displacement float64) decimal.Decimal {
	for _, b := range passengerDisplacementRates {
		if b.lo < displacement && displacement <= b.hi {
			return decimal.NewFromInt(b.rate)
		}
	}
	return decimal.NewFromInt(passengerDisplacementRates[len(passengerDisplacementRates)-1].rate)
}

// LightGoodsRate returns the annual rate for an N1 vehicle with the given
// total weight in tonnes and axle count. Unmatched combinations take the
// lowest rate.
func (s *RateSchedule) LightGoodsRate(weightTonnes float64, axles int) decimal.Decimal {
	for _, b := range lightGoodsWeightRates {
		if b.lo < weightTonnes && weightTonnes <= b.hi && b.axles == axles {
			return decimal.NewFromInt(b.rate)
		}
	}
	return decimal.NewFromInt(115)
}

// TrailerRate returns the flat annual rate for an O category code.
// Unknown O codes take the O1 rate.
func (s *RateSchedule) TrailerRate(category string) decimal.Decimal {
	code := strings.ToUpper(strings.TrimSpace(category))
	if rate, ok := trailerRates[code]; ok {
		return decimal.NewFromInt(rate)
	}
	return decimal.NewFromInt(50)
}

// AgeCoefficient returns the rate multiplier for a vehicle of the given
// age in months in the given tax year. The 2025 amendment replaced the
// discount table with a surcharge-only one.
func (s *RateSchedule) AgeCoefficient(months, year int) decimal.Decimal {
	table := ageCoefficients2024
	if year >= 2025 {
		table = ageCoefficients2025
	}
	for _, b := range table {
		if b.lo <= months && months < b.hi {
			return decimal.RequireFromString(b.coef)
		}
	}
	return decimal.RequireFromString(table[len(table)-1].coef)
}
