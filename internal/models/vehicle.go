package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryClass is the closed set of vehicle families the rate schedule
// distinguishes. The category code on the registration certificate (L, M1,
// N1, O4, ...) maps onto exactly one class.
type CategoryClass int

const (
	ClassUnknown CategoryClass = iota
	ClassPassenger               // L*, M1 - motorcycles, three-wheelers, passenger cars
	ClassLightGoods              // N1 - light goods vehicles up to 12 t
	ClassMediumGoods             // M2, N2 - buses and goods vehicles
	ClassHeavyGoods              // M3, N3 - heavy buses and goods vehicles
	ClassTrailer                 // O1-O4 - trailers and semi-trailers
)

// Classify maps a category code to its rate-schedule class. Matching is
// case-insensitive; any code starting with L counts as passenger (L1e, L3e
// etc. appear on certificates), any code starting with O as a trailer.
func Classify(category string) CategoryClass {
	code := strings.ToUpper(strings.TrimSpace(category))
	switch {
	case code == "M1" || strings.HasPrefix(code, "L"):
		return ClassPassenger
	case code == "N1":
		return ClassLightGoods
	case code == "M2" || code == "N2":
		return ClassMediumGoods
	case code == "M3" || code == "N3":
		return ClassHeavyGoods
	case strings.HasPrefix(code, "O"):
		return ClassTrailer
	}
	return ClassUnknown
}

// Vehicle holds the registration data a tax computation starts from.
// Every field except the category may be missing; lookups fall back to
// safe defaults instead of failing.
type Vehicle struct {
	ID         int    `db:"id" json:"id"`
	TaxpayerID int    `db:"taxpayer_id" json:"taxpayer_id"`
	Plate      string `db:"plate" json:"plate"`
	Category   string `db:"category" json:"category"`

	// Dates in d.m.yyyy form, as printed on the certificate.
	FirstRegistration string `db:"first_registration" json:"first_registration"`
	LiabilityFrom     string `db:"liability_from" json:"liability_from"`
	LiabilityTo       string `db:"liability_to" json:"liability_to"`

	Displacement float64 `db:"displacement" json:"displacement"` // cm3
	PowerKW      float64 `db:"power_kw" json:"power_kw"`
	WeightKG     float64 `db:"weight_kg" json:"weight_kg"`
	AxleCount    int     `db:"axle_count" json:"axle_count"`

	// Body code and suspension flags from the certificate (declaration
	// rows 04 and 05); they do not affect the computed tax.
	BodyCodeBABB    bool `db:"body_code_ba_bb" json:"body_code_ba_bb"`
	BodyCodeBCBD    bool `db:"body_code_bc_bd" json:"body_code_bc_bd"`
	AirSuspension   bool `db:"air_suspension" json:"air_suspension"`
	OtherSuspension bool `db:"other_suspension" json:"other_suspension"`

	Hybrid   bool `db:"hybrid" json:"hybrid"`
	Gas      bool `db:"gas" json:"gas"`
	Hydrogen bool `db:"hydrogen" json:"hydrogen"`

	CombinedTransport bool `db:"combined_transport" json:"combined_transport"`

	Exempt      bool            `db:"exempt" json:"exempt"`
	Exemption   decimal.Decimal `db:"exemption" json:"exemption"`
	MonthsOfUse int             `db:"months_of_use" json:"months_of_use"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasEcoDrive reports whether any of the alternative-drive flags is set.
func (v *Vehicle) HasEcoDrive() bool {
	return v.Hybrid || v.Gas || v.Hydrogen
}

// VehicleTaxResult is the full trace of one tax computation. It is created
// by the calculator, never mutated afterwards.
type VehicleTaxResult struct {
	BaseRate          decimal.Decimal `json:"base_rate"`
	AgeMonths         int             `json:"age_months"`
	AgeCoefficient    decimal.Decimal `json:"age_coefficient"`
	RateAfterAge      decimal.Decimal `json:"rate_after_age"`
	EcoCoefficient    decimal.Decimal `json:"eco_coefficient"`
	RateAfterEco      decimal.Decimal `json:"rate_after_eco"`
	FinalRate         decimal.Decimal `json:"final_rate"`
	MonthsOfUse       int             `json:"months_of_use"`
	Tax               decimal.Decimal `json:"tax"`
	AdjustmentPercent int             `json:"adjustment_percent"` // signed, -25 means 25% discount
	ZeroEmission      bool            `json:"zero_emission"`
}
