package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Declaration kinds.
const (
	DeclarationRegular      = "RDP" // regular return
	DeclarationCorrective   = "ODP" // corrective return
	DeclarationSupplementary = "DDP" // supplementary return
)

// Declaration statuses as persisted.
const (
	DeclarationPending   = "pending"
	DeclarationCompleted = "completed"
	DeclarationFailed    = "failed"
)

// VehicleSlot is one vehicle column of the declaration form: the
// registration data plus everything the calculator derived for it.
type VehicleSlot struct {
	Plate             string `json:"plate"`
	Category          string `json:"category"`
	FirstRegistration string `json:"first_registration"`
	LiabilityFrom     string `json:"liability_from"`
	LiabilityTo       string `json:"liability_to"`

	BodyCodeBABB    bool `json:"body_code_ba_bb"`
	BodyCodeBCBD    bool `json:"body_code_bc_bd"`
	AirSuspension   bool `json:"air_suspension"`
	OtherSuspension bool `json:"other_suspension"`

	Displacement float64 `json:"displacement"`
	PowerKW      float64 `json:"power_kw"`
	WeightKG     float64 `json:"weight_kg"`
	AxleCount    int     `json:"axle_count"`

	Hybrid            bool `json:"hybrid"`
	Gas               bool `json:"gas"`
	Hydrogen          bool `json:"hydrogen"`
	CombinedTransport bool `json:"combined_transport"`
	Exempt            bool `json:"exempt"`

	BaseRate     decimal.Decimal `json:"base_rate"`
	RateAfterAge decimal.Decimal `json:"rate_after_age"`
	RateAfterEco decimal.Decimal `json:"rate_after_eco"`
	FinalRate    decimal.Decimal `json:"final_rate"`
	MonthsOfUse  int             `json:"months_of_use"`

	// Display-only surcharge/discount band flags, set only from the
	// 2025 schedule onward. At most one is true.
	Band10 bool `json:"band_10"`
	Band20 bool `json:"band_20"`
	Band30 bool `json:"band_30"`
	Band40 bool `json:"band_40"`
	Band50 bool `json:"band_50"`

	Tax               decimal.Decimal `json:"tax"`
	Exemption         decimal.Decimal `json:"exemption"`
	TaxAfterExemption decimal.Decimal `json:"tax_after_exemption"`
}

// DeclarationPage carries up to two vehicle slots. Right is nil on the
// last page of an odd-sized declaration (and on the single page of an
// empty one, where Left is nil too).
type DeclarationPage struct {
	Number int          `json:"number"`
	Total  int          `json:"total"`
	Left   *VehicleSlot `json:"left"`
	Right  *VehicleSlot `json:"right"`
}

// TaxpayerSummary aggregates the per-vehicle results into the summary
// rows of the declaration body.
type TaxpayerSummary struct {
	VehicleCount      int             `json:"vehicle_count"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	TotalExemption    decimal.Decimal `json:"total_exemption"`
	TaxAfterExemption decimal.Decimal `json:"tax_after_exemption"`
	AdvancesPaid      decimal.Decimal `json:"advances_paid"`
	TaxDue            decimal.Decimal `json:"tax_due"`
}

// Declaration is the complete submission record for one taxpayer and one
// tax year. The assembler owns the slot sequence during assembly; slot
// and page order follow the input vehicle order exactly.
type Declaration struct {
	Code       string    `json:"code"`
	Kind       string    `json:"kind"`
	Year       int       `json:"year"`
	PeriodFrom string    `json:"period_from"`
	PeriodTo   string    `json:"period_to"`
	Taxpayer   *Taxpayer `json:"taxpayer"`

	Summary TaxpayerSummary   `json:"summary"`
	Pages   []DeclarationPage `json:"pages"`

	Notes      string `json:"notes"`
	DeclaredAt string `json:"declared_at"` // d.m.yyyy
}

// DeclarationRecord is the persisted trace of a generated declaration.
type DeclarationRecord struct {
	ID         int             `db:"id" json:"id"`
	Code       string          `db:"code" json:"code"`
	TaxpayerID int             `db:"taxpayer_id" json:"taxpayer_id"`
	Year       int             `db:"year" json:"year"`
	Kind       string          `db:"kind" json:"kind"`
	Status     string          `db:"status" json:"status"`
	TotalTax   decimal.Decimal `db:"total_tax" json:"total_tax"`
	XMLPath    string          `db:"xml_path" json:"xml_path"`
	Error      string          `db:"error" json:"error"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}
