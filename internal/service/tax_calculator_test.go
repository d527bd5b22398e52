package service

import (
	"testing"

	"motortax-web/internal/models"
)

func TestAgeInMonths(t *testing.T) {
	c := NewTaxCalculator(2024)

	tests := []struct {
		name string
		date string
		want int
	}{
		{"dot separators", "10.5.2018", 79},
		{"slash separators", "10/5/2018", 79},
		{"registered in december of the tax year", "1.12.2024", 0},
		{"registered january same year", "15.1.2024", 11},
		{"future registration clamps to zero", "1.6.2025", 0},
		{"empty date", "", 0},
		{"garbage", "not-a-date", 0},
		{"missing year", "10.5", 0},
		{"month out of range", "10.13.2018", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.AgeInMonths(tt.date); got != tt.want {
				t.Errorf("AgeInMonths(%q) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestBaseRate(t *testing.T) {
	c := NewTaxCalculator(2024)

	tests := []struct {
		name    string
		vehicle models.Vehicle
		want    string
		zero    bool
	}{
		{"petrol m1", models.Vehicle{Category: "M1", Displacement: 1998}, "148", false},
		{"motorcycle", models.Vehicle{Category: "L3e", Displacement: 125}, "50", false},
		{"electric m1", models.Vehicle{Category: "M1", PowerKW: 150}, "0", true},
		{"electric n1", models.Vehicle{Category: "N1", PowerKW: 100}, "0", true},
		{"electric n3 is not zero rated", models.Vehicle{Category: "N3", PowerKW: 300}, "115", false},
		{"m1 without displacement or power", models.Vehicle{Category: "M1"}, "218", false},
		{"n1 by weight", models.Vehicle{Category: "N1", WeightKG: 3500}, "148", false},
		{"n1 three axles falls back", models.Vehicle{Category: "N1", WeightKG: 3500, AxleCount: 3}, "115", false},
		{"trailer o3", models.Vehicle{Category: "O3"}, "180", false},
		{"n3 with displacement uses displacement table", models.Vehicle{Category: "N3", Displacement: 12000}, "218", false},
		{"unknown category without displacement", models.Vehicle{Category: "T"}, "115", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, zero := c.BaseRate(&tt.vehicle)
			if got.String() != tt.want || zero != tt.zero {
				t.Errorf("BaseRate() = (%s, %v), want (%s, %v)", got, zero, tt.want, tt.zero)
			}
		})
	}
}

func TestComputeFullPipeline(t *testing.T) {
	c := NewTaxCalculator(2024)

	// Two litre car, 79 months old: 148 * 0.85 = 125.80 for a full year.
	v := &models.Vehicle{Category: "M1", Displacement: 1998, FirstRegistration: "10.5.2018"}
	r := c.Compute(v, 12)

	if r.BaseRate.String() != "148" {
		t.Fatalf("base rate = %s, want 148", r.BaseRate)
	}
	if r.AgeMonths != 79 {
		t.Fatalf("age months = %d, want 79", r.AgeMonths)
	}
	if r.AgeCoefficient.String() != "0.85" {
		t.Fatalf("age coefficient = %s, want 0.85", r.AgeCoefficient)
	}
	if r.AdjustmentPercent != -15 {
		t.Fatalf("adjustment percent = %d, want -15", r.AdjustmentPercent)
	}
	if r.Tax.StringFixed(2) != "125.80" {
		t.Fatalf("tax = %s, want 125.80", r.Tax.StringFixed(2))
	}
}

func TestComputeDiscountRounding(t *testing.T) {
	// 148 * 0.80 = 118.40 must survive the divide-by-twelve proration.
	c := NewTaxCalculator(2024)
	v := &models.Vehicle{Category: "M1", Displacement: 1998, FirstRegistration: "1.6.2020"}

	r := c.Compute(v, 12)
	if r.AgeCoefficient.String() != "0.8" {
		t.Fatalf("age coefficient = %s, want 0.8", r.AgeCoefficient)
	}
	if r.Tax.StringFixed(2) != "118.40" {
		t.Fatalf("tax = %s, want 118.40", r.Tax.StringFixed(2))
	}
	if r.AdjustmentPercent != -20 {
		t.Fatalf("adjustment percent = %d, want -20", r.AdjustmentPercent)
	}
}

func TestComputeProration(t *testing.T) {
	c := NewTaxCalculator(2024)
	v := &models.Vehicle{Category: "M1", Displacement: 1998, FirstRegistration: "10.5.2018"}

	r := c.Compute(v, 6)
	if r.Tax.StringFixed(2) != "62.90" {
		t.Fatalf("tax for 6 months = %s, want 62.90", r.Tax.StringFixed(2))
	}
}

func TestComputeZeroEmission(t *testing.T) {
	c := NewTaxCalculator(2024)
	v := &models.Vehicle{Category: "M1", PowerKW: 150, FirstRegistration: "10.5.2023"}

	r := c.Compute(v, 12)
	if !r.ZeroEmission {
		t.Fatal("expected zero emission vehicle")
	}
	if !r.Tax.IsZero() || !r.BaseRate.IsZero() {
		t.Fatalf("tax = %s, base = %s, want both zero", r.Tax, r.BaseRate)
	}
	if r.AgeMonths != 0 {
		t.Fatalf("age months = %d, want 0 on short circuit", r.AgeMonths)
	}
	if r.AgeCoefficient.String() != "1" || r.EcoCoefficient.String() != "1" {
		t.Fatalf("coefficients = (%s, %s), want neutral", r.AgeCoefficient, r.EcoCoefficient)
	}
}

func TestComputeTrailers(t *testing.T) {
	c2024 := NewTaxCalculator(2024)
	c2025 := NewTaxCalculator(2025)

	o4 := &models.Vehicle{Category: "O4", FirstRegistration: "1.1.2010"}
	r := c2024.Compute(o4, 12)
	if r.AgeCoefficient.String() != "0.4" {
		t.Fatalf("O4 2024 coefficient = %s, want 0.4", r.AgeCoefficient)
	}
	if r.Tax.StringFixed(2) != "118.00" {
		t.Fatalf("O4 2024 tax = %s, want 118.00", r.Tax.StringFixed(2))
	}

	r = c2025.Compute(o4, 12)
	if r.AgeCoefficient.String() != "1" {
		t.Fatalf("O4 2025 coefficient = %s, want 1", r.AgeCoefficient)
	}
	if r.Tax.StringFixed(2) != "295.00" {
		t.Fatalf("O4 2025 tax = %s, want 295.00", r.Tax.StringFixed(2))
	}

	o2 := &models.Vehicle{Category: "O2", FirstRegistration: "1.1.2010"}
	r = c2024.Compute(o2, 12)
	if r.AgeCoefficient.String() != "1" {
		t.Fatalf("O2 coefficient = %s, want 1", r.AgeCoefficient)
	}
}

func TestComputeEcoDiscount(t *testing.T) {
	// 129 months old: neutral age coefficient both years.
	hybrid := &models.Vehicle{Category: "M1", Displacement: 1998, FirstRegistration: "1.3.2014", Hybrid: true}

	r := NewTaxCalculator(2024).Compute(hybrid, 12)
	if r.EcoCoefficient.String() != "0.5" {
		t.Fatalf("eco coefficient = %s, want 0.5", r.EcoCoefficient)
	}
	if r.Tax.StringFixed(2) != "74.00" {
		t.Fatalf("hybrid tax = %s, want 74.00", r.Tax.StringFixed(2))
	}

	// Heavy goods hybrids keep the discount only before the amendment.
	truck := &models.Vehicle{Category: "N3", Displacement: 12000, FirstRegistration: "1.3.2014", Gas: true}
	r = NewTaxCalculator(2024).Compute(truck, 12)
	if r.EcoCoefficient.String() != "0.5" {
		t.Fatalf("2024 gas truck eco coefficient = %s, want 0.5", r.EcoCoefficient)
	}
	r = NewTaxCalculator(2025).Compute(truck, 12)
	if r.EcoCoefficient.String() != "1" {
		t.Fatalf("2025 gas truck eco coefficient = %s, want 1", r.EcoCoefficient)
	}
}

func TestComputeCombinedTransport(t *testing.T) {
	c := NewTaxCalculator(2024)
	v := &models.Vehicle{
		Category:          "M1",
		Displacement:      1998,
		FirstRegistration: "1.3.2014",
		Hybrid:            true,
		CombinedTransport: true,
	}

	r := c.Compute(v, 12)
	if r.FinalRate.StringFixed(2) != "37.00" {
		t.Fatalf("final rate = %s, want 37.00", r.FinalRate.StringFixed(2))
	}
	if r.Tax.StringFixed(2) != "37.00" {
		t.Fatalf("tax = %s, want 37.00", r.Tax.StringFixed(2))
	}
}

func TestComputeForVehicleMonths(t *testing.T) {
	c := NewTaxCalculator(2024)

	tests := []struct {
		name    string
		vehicle models.Vehicle
		want    int
	}{
		{"explicit months win", models.Vehicle{Category: "M1", Displacement: 1000, MonthsOfUse: 3, LiabilityFrom: "1.4.2024"}, 3},
		{"liability from april", models.Vehicle{Category: "M1", Displacement: 1000, LiabilityFrom: "15.4.2024"}, 9},
		{"liability from january", models.Vehicle{Category: "M1", Displacement: 1000, LiabilityFrom: "1.1.2024"}, 12},
		{"no liability date", models.Vehicle{Category: "M1", Displacement: 1000}, 12},
		{"broken liability date", models.Vehicle{Category: "M1", Displacement: 1000, LiabilityFrom: "bogus"}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.ComputeForVehicle(&tt.vehicle)
			if r.MonthsOfUse != tt.want {
				t.Errorf("months of use = %d, want %d", r.MonthsOfUse, tt.want)
			}
		})
	}
}

func TestBandFlags(t *testing.T) {
	c2024 := NewTaxCalculator(2024)
	c2025 := NewTaxCalculator(2025)

	if b10, b20, b30, b40, b50 := c2024.BandFlags(50); b10 || b20 || b30 || b40 || b50 {
		t.Fatal("band flags must stay clear before 2025")
	}

	tests := []struct {
		percent int
		want    [5]bool
	}{
		{5, [5]bool{false, false, false, false, false}},
		{10, [5]bool{true, false, false, false, false}},
		{20, [5]bool{false, true, false, false, false}},
		{30, [5]bool{false, false, true, false, false}},
		{40, [5]bool{false, false, false, true, false}},
		{50, [5]bool{false, false, false, false, true}},
		{-25, [5]bool{false, false, false, false, false}},
	}

	for _, tt := range tests {
		b10, b20, b30, b40, b50 := c2025.BandFlags(tt.percent)
		got := [5]bool{b10, b20, b30, b40, b50}
		if got != tt.want {
			t.Errorf("BandFlags(%d) = %v, want %v", tt.percent, got, tt.want)
		}
	}
}
