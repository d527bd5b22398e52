package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"motortax-web/internal/models"
)

func testTaxpayer() *models.Taxpayer {
	return &models.Taxpayer{
		DIC:       "2023456789",
		Corporate: true,
		Name:      "Doprava Test s.r.o.",
		Street:    "Hlavná",
		City:      "Bratislava",
	}
}

func TestAssembleSummary(t *testing.T) {
	a := NewDeclarationAssembler(2024)

	vehicles := []models.Vehicle{
		// 148 * 0.85 = 125.80
		{Plate: "BA111AA", Category: "M1", Displacement: 1998, FirstRegistration: "10.5.2018"},
		// O4 2024: 295 * 0.40 = 118.00
		{Plate: "BA222BB", Category: "O4", FirstRegistration: "1.1.2015"},
	}

	d := a.Assemble(testTaxpayer(), vehicles, models.DeclarationRegular, decimal.NewFromInt(50), "")

	if d.Summary.VehicleCount != 2 {
		t.Fatalf("vehicle count = %d, want 2", d.Summary.VehicleCount)
	}
	if d.Summary.TotalTax.StringFixed(2) != "243.80" {
		t.Fatalf("total tax = %s, want 243.80", d.Summary.TotalTax.StringFixed(2))
	}
	if !d.Summary.TotalExemption.IsZero() {
		t.Fatalf("total exemption = %s, want 0", d.Summary.TotalExemption)
	}
	if d.Summary.TaxAfterExemption.StringFixed(2) != "243.80" {
		t.Fatalf("tax after exemption = %s, want 243.80", d.Summary.TaxAfterExemption.StringFixed(2))
	}
	if d.Summary.TaxDue.StringFixed(2) != "193.80" {
		t.Fatalf("tax due = %s, want 193.80", d.Summary.TaxDue.StringFixed(2))
	}
	if d.PeriodFrom != "1.1.2024" || d.PeriodTo != "31.12.2024" {
		t.Fatalf("period = %s - %s", d.PeriodFrom, d.PeriodTo)
	}
	if !strings.HasPrefix(d.Code, "DP-") || len(d.Code) != 11 {
		t.Fatalf("unexpected declaration code %q", d.Code)
	}
}

func TestAssembleExemption(t *testing.T) {
	a := NewDeclarationAssembler(2024)

	vehicles := []models.Vehicle{
		// Exempt without an amount: exemption equals the full tax.
		{Plate: "KE001AA", Category: "M1", Displacement: 1200, FirstRegistration: "1.1.2010", Exempt: true},
		{Plate: "KE002BB", Category: "M1", Displacement: 1200, FirstRegistration: "1.1.2010"},
	}

	d := a.Assemble(testTaxpayer(), vehicles, models.DeclarationRegular, decimal.Zero, "")

	slot := d.Pages[0].Left
	if !slot.TaxAfterExemption.IsZero() {
		t.Fatalf("exempt vehicle tax after exemption = %s, want 0", slot.TaxAfterExemption)
	}
	if !slot.Exemption.Equal(slot.Tax) {
		t.Fatalf("exemption = %s, tax = %s, want equal", slot.Exemption, slot.Tax)
	}
	if !d.Summary.TaxAfterExemption.Equal(d.Pages[0].Right.Tax) {
		t.Fatalf("tax after exemption = %s, want tax of second vehicle %s",
			d.Summary.TaxAfterExemption, d.Pages[0].Right.Tax)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		vehicles  int
		wantPages int
		lastRight bool
	}{
		{"no vehicles still one page", 0, 1, false},
		{"one vehicle", 1, 1, false},
		{"two vehicles", 2, 1, true},
		{"three vehicles", 3, 2, false},
		{"four vehicles", 4, 2, true},
		{"five vehicles", 5, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewDeclarationAssembler(2024)
			vehicles := make([]models.Vehicle, tt.vehicles)
			for i := range vehicles {
				vehicles[i] = models.Vehicle{Category: "M1", Displacement: 1000}
			}

			d := a.Assemble(testTaxpayer(), vehicles, models.DeclarationRegular, decimal.Zero, "")

			if len(d.Pages) != tt.wantPages {
				t.Fatalf("pages = %d, want %d", len(d.Pages), tt.wantPages)
			}
			last := d.Pages[len(d.Pages)-1]
			if (last.Right != nil) != tt.lastRight {
				t.Fatalf("last page right slot present = %v, want %v", last.Right != nil, tt.lastRight)
			}
			for i, p := range d.Pages {
				if p.Number != i+1 || p.Total != tt.wantPages {
					t.Fatalf("page %d numbering = %d/%d", i, p.Number, p.Total)
				}
			}
			if tt.vehicles == 0 && d.Pages[0].Left != nil {
				t.Fatal("empty declaration page must have no slots")
			}
		})
	}
}

func TestAssemblePreservesVehicleOrder(t *testing.T) {
	a := NewDeclarationAssembler(2024)
	plates := []string{"ZA100AA", "ZA200BB", "ZA300CC"}

	vehicles := make([]models.Vehicle, len(plates))
	for i, p := range plates {
		vehicles[i] = models.Vehicle{Plate: p, Category: "M1", Displacement: 1000}
	}

	d := a.Assemble(testTaxpayer(), vehicles, models.DeclarationRegular, decimal.Zero, "")

	got := []string{d.Pages[0].Left.Plate, d.Pages[0].Right.Plate, d.Pages[1].Left.Plate}
	for i, p := range plates {
		if got[i] != p {
			t.Fatalf("slot %d plate = %s, want %s", i, got[i], p)
		}
	}
}

func TestAssembleBandFlags2025(t *testing.T) {
	a := NewDeclarationAssembler(2025)

	// 144 months in 2025: coefficient 1.40, +40% band.
	vehicles := []models.Vehicle{
		{Plate: "TT400DD", Category: "M1", Displacement: 1998, FirstRegistration: "1.12.2013"},
	}

	d := a.Assemble(testTaxpayer(), vehicles, models.DeclarationRegular, decimal.Zero, "")

	slot := d.Pages[0].Left
	if !slot.Band40 || slot.Band10 || slot.Band20 || slot.Band30 || slot.Band50 {
		t.Fatalf("band flags = %v %v %v %v %v, want only 40%%",
			slot.Band10, slot.Band20, slot.Band30, slot.Band40, slot.Band50)
	}
}
