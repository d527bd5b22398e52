package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"motortax-web/internal/models"
)

// DeclarationAssembler turns a taxpayer and their vehicle list into a
// complete declaration: per-vehicle computations, two-column pages and
// the summary rows.
type DeclarationAssembler struct {
	calc *TaxCalculator
}

func NewDeclarationAssembler(year int) *DeclarationAssembler {
	return &DeclarationAssembler{calc: NewTaxCalculator(year)}
}

// NewDeclarationCode returns a short unique code for a declaration run.
func NewDeclarationCode() string {
	return "DP-" + strings.ToUpper(uuid.New().String()[:8])
}

// buildSlot runs the calculator for one vehicle and fills its form column.
func (a *DeclarationAssembler) buildSlot(v *models.Vehicle) *models.VehicleSlot {
	r := a.calc.ComputeForVehicle(v)

	slot := &models.VehicleSlot{
		Plate:             v.Plate,
		Category:          v.Category,
		FirstRegistration: v.FirstRegistration,
		LiabilityFrom:     v.LiabilityFrom,
		LiabilityTo:       v.LiabilityTo,

		BodyCodeBABB:    v.BodyCodeBABB,
		BodyCodeBCBD:    v.BodyCodeBCBD,
		AirSuspension:   v.AirSuspension,
		OtherSuspension: v.OtherSuspension,

		Displacement: v.Displacement,
		PowerKW:      v.PowerKW,
		WeightKG:     v.WeightKG,
		AxleCount:    v.AxleCount,

		Hybrid:            v.Hybrid,
		Gas:               v.Gas,
		Hydrogen:          v.Hydrogen,
		CombinedTransport: v.CombinedTransport,
		Exempt:            v.Exempt,

		BaseRate:     r.BaseRate,
		RateAfterAge: r.RateAfterAge.Round(2),
		RateAfterEco: r.RateAfterEco.Round(2),
		FinalRate:    r.FinalRate.Round(2),
		MonthsOfUse:  r.MonthsOfUse,
		Tax:          r.Tax,
	}

	slot.Band10, slot.Band20, slot.Band30, slot.Band40, slot.Band50 =
		a.calc.BandFlags(r.AdjustmentPercent)

	// An exempt vehicle without an explicit exemption amount is exempt in
	// full.
	slot.Exemption = v.Exemption
	if v.Exempt && slot.Exemption.IsZero() {
		slot.Exemption = r.Tax
	}
	slot.TaxAfterExemption = r.Tax.Sub(slot.Exemption)

	return slot
}

// paginate packs slots into two-column pages. An empty declaration still
// carries one blank page.
func paginate(slots []*models.VehicleSlot) []models.DeclarationPage {
	total := (len(slots) + 1) / 2
	if total == 0 {
		total = 1
	}

	pages := make([]models.DeclarationPage, 0, total)
	for i := 0; i < total; i++ {
		page := models.DeclarationPage{Number: i + 1, Total: total}
		if 2*i < len(slots) {
			page.Left = slots[2*i]
		}
		if 2*i+1 < len(slots) {
			page.Right = slots[2*i+1]
		}
		pages = append(pages, page)
	}
	return pages
}

// Assemble builds the full declaration for one taxpayer and tax year.
// Vehicle order is preserved in the slot and page sequence.
func (a *DeclarationAssembler) Assemble(
	taxpayer *models.Taxpayer,
	vehicles []models.Vehicle,
	kind string,
	advancesPaid decimal.Decimal,
	notes string,
) *models.Declaration {
	year := a.calc.Year()

	slots := make([]*models.VehicleSlot, 0, len(vehicles))
	summary := models.TaxpayerSummary{
		VehicleCount: len(vehicles),
		AdvancesPaid: advancesPaid,
	}

	for i := range vehicles {
		slot := a.buildSlot(&vehicles[i])
		slots = append(slots, slot)

		summary.TotalTax = summary.TotalTax.Add(slot.Tax)
		summary.TotalExemption = summary.TotalExemption.Add(slot.Exemption)
	}

	summary.TaxAfterExemption = summary.TotalTax.Sub(summary.TotalExemption)
	summary.TaxDue = summary.TaxAfterExemption.Sub(advancesPaid)

	return &models.Declaration{
		Code:       NewDeclarationCode(),
		Kind:       kind,
		Year:       year,
		PeriodFrom: fmt.Sprintf("1.1.%d", year),
		PeriodTo:   fmt.Sprintf("31.12.%d", year),
		Taxpayer:   taxpayer,
		Summary:    summary,
		Pages:      paginate(slots),
		Notes:      notes,
		DeclaredAt: time.Now().Format("02.01.2006"),
	}
}
