package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"motortax-web/internal/models"
)

var (
	decOne    = decimal.NewFromInt(1)
	decHalf   = decimal.RequireFromString("0.50")
	decTwelve = decimal.NewFromInt(12)
)

// TaxCalculator computes the annual tax for a single vehicle in a fixed
// tax year. The pipeline is base rate, age adjustment, ecological
// discount, combined transport discount, then proration by months of use.
type TaxCalculator struct {
	year      int
	periodEnd time.Time
	schedule  *RateSchedule
}

func NewTaxCalculator(year int) *TaxCalculator {
	return &TaxCalculator{
		year:      year,
		periodEnd: time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		schedule:  NewRateSchedule(),
	}
}

func (c *TaxCalculator) Year() int {
	return c.year
}

// AgeInMonths returns whole months between the first registration date
// and the end of the tax period. Dates are d.m.yyyy with either dot or
// slash separators; anything unparseable counts as age zero.
func (c *TaxCalculator) AgeInMonths(firstRegistration string) int {
	if firstRegistration == "" {
		return 0
	}
	parts := strings.Split(strings.ReplaceAll(firstRegistration, "/", "."), ".")
	if len(parts) < 3 {
		return 0
	}
	day, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return 0
	}

	months := (c.periodEnd.Year()-year)*12 + int(c.periodEnd.Month()) - month
	if months < 0 {
		return 0
	}
	return months
}

// BaseRate resolves the annual base rate for the vehicle and reports
// whether it qualifies as zero-emission. Electric passenger and light
// goods vehicles are taxed at zero; categories without a dedicated table
// fall back to the displacement table, or 115 EUR without a displacement.
func (c *TaxCalculator) BaseRate(v *models.Vehicle) (decimal.Decimal, bool) {
	class := models.Classify(v.Category)

	if v.PowerKW > 0 && v.Displacement == 0 &&
		(class == models.ClassPassenger || class == models.ClassLightGoods) {
		return decimal.Zero, true
	}

	switch class {
	case models.ClassPassenger:
		return c.schedule.PassengerRate(v.Displacement), false
	case models.ClassLightGoods:
		axles := v.AxleCount
		if axles == 0 {
			axles = 2
		}
		return c.schedule.LightGoodsRate(v.WeightKG/1000, axles), false
	case models.ClassTrailer:
		return c.schedule.TrailerRate(v.Category), false
	}

	if v.Displacement > 0 {
		return c.schedule.PassengerRate(v.Displacement), false
	}
	return decimal.NewFromInt(115), false
}

// ageCoefficient applies the trailer special cases before consulting the
// schedule: O4 semi-trailers get a flat -60% in 2024, other trailers are
// never age-adjusted.
func (c *TaxCalculator) ageCoefficient(v *models.Vehicle, ageMonths int) decimal.Decimal {
	code := strings.ToUpper(strings.TrimSpace(v.Category))
	if code == "O4" && c.year == 2024 {
		return decimal.RequireFromString("0.40")
	}
	if models.Classify(code) == models.ClassTrailer {
		return decOne
	}
	return c.schedule.AgeCoefficient(ageMonths, c.year)
}

// ecoCoefficient is 0.50 for hybrid, gas and hydrogen drives. From 2025
// the discount is limited to passenger and light goods vehicles.
func (c *TaxCalculator) ecoCoefficient(v *models.Vehicle) decimal.Decimal {
	if !v.HasEcoDrive() {
		return decOne
	}
	if c.year >= 2025 {
		class := models.Classify(v.Category)
		if class != models.ClassPassenger && class != models.ClassLightGoods {
			return decOne
		}
	}
	return decHalf
}

// Compute runs the full pipeline for one vehicle and the given months of
// use. A zero base rate short-circuits with a zero tax and neutral
// coefficients.
func (c *TaxCalculator) Compute(v *models.Vehicle, monthsOfUse int) *models.VehicleTaxResult {
	result := &models.VehicleTaxResult{
		AgeCoefficient: decOne,
		EcoCoefficient: decOne,
		MonthsOfUse:    monthsOfUse,
	}

	base, zeroEmission := c.BaseRate(v)
	result.BaseRate = base
	result.ZeroEmission = zeroEmission
	if base.IsZero() {
		return result
	}

	result.AgeMonths = c.AgeInMonths(v.FirstRegistration)

	ageCoef := c.ageCoefficient(v, result.AgeMonths)
	result.AgeCoefficient = ageCoef
	result.RateAfterAge = base.Mul(ageCoef)

	if ageCoef.LessThan(decOne) {
		result.AdjustmentPercent = -int(decOne.Sub(ageCoef).Shift(2).IntPart())
	} else {
		result.AdjustmentPercent = int(ageCoef.Sub(decOne).Shift(2).IntPart())
	}

	ecoCoef := c.ecoCoefficient(v)
	result.EcoCoefficient = ecoCoef
	result.RateAfterEco = result.RateAfterAge.Mul(ecoCoef)

	result.FinalRate = result.RateAfterEco
	if v.CombinedTransport {
		result.FinalRate = result.RateAfterEco.Mul(decHalf)
	}

	result.Tax = result.FinalRate.
		Div(decTwelve).
		Mul(decimal.NewFromInt(int64(monthsOfUse))).
		Round(2)

	return result
}

// ComputeForVehicle derives the months of use from the vehicle record and
// runs Compute. Without explicit months the liability start date decides:
// liability arising in month m means 13-m months, a missing or broken
// date means the full year.
func (c *TaxCalculator) ComputeForVehicle(v *models.Vehicle) *models.VehicleTaxResult {
	months := v.MonthsOfUse
	if months == 0 {
		months = 12
		if v.LiabilityFrom != "" {
			parts := strings.Split(strings.ReplaceAll(v.LiabilityFrom, "/", "."), ".")
			if len(parts) >= 2 {
				if m, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && m >= 1 && m <= 12 {
					months = 13 - m
				}
			}
		}
	}
	return c.Compute(v, months)
}

// BandFlags maps a surcharge percentage to the declaration band flags,
// highest band only. The flags exist on the amended form only, so years
// before 2025 never set them.
func (c *TaxCalculator) BandFlags(adjustmentPercent int) (b10, b20, b30, b40, b50 bool) {
	if c.year < 2025 {
		return
	}
	switch {
	case adjustmentPercent >= 50:
		b50 = true
	case adjustmentPercent >= 40:
		b40 = true
	case adjustmentPercent >= 30:
		b30 = true
	case adjustmentPercent >= 20:
		b20 = true
	case adjustmentPercent >= 10:
		b10 = true
	}
	return
}
