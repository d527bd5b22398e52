package service

import "testing"

func TestPassengerRate(t *testing.T) {
	s := NewRateSchedule()

	tests := []struct {
		name         string
		displacement float64
		want         int64
	}{
		{"small moped", 49, 50},
		{"bracket upper bound inclusive", 150, 50},
		{"mid compact", 899, 62},
		{"upper bound of second bracket", 900, 62},
		{"just above second bracket", 901, 80},
		{"family car", 1498, 115},
		{"two litre", 2000, 148},
		{"large suv", 2998, 180},
		{"above top bracket", 5700, 218},
		{"zero displacement falls to top rate", 0, 218},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.PassengerRate(tt.displacement)
			if got.IntPart() != tt.want {
				t.Errorf("PassengerRate(%v) = %s, want %d", tt.displacement, got, tt.want)
			}
		})
	}
}

func TestLightGoodsRate(t *testing.T) {
	s := NewRateSchedule()

	tests := []struct {
		name   string
		tonnes float64
		axles  int
		want   int64
	}{
		{"light van", 1.8, 2, 115},
		{"two tonnes exactly", 2, 2, 115},
		{"three and a half tonnes", 3.5, 2, 148},
		{"five tonnes", 5, 2, 180},
		{"seven tonnes", 7, 2, 218},
		{"nine tonnes", 9, 2, 253},
		{"eleven tonnes", 11, 2, 295},
		{"over twelve tonnes falls back", 13, 2, 115},
		{"three axles falls back", 5, 3, 115},
		{"zero weight falls back", 0, 2, 115},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.LightGoodsRate(tt.tonnes, tt.axles)
			if got.IntPart() != tt.want {
				t.Errorf("LightGoodsRate(%v, %d) = %s, want %d", tt.tonnes, tt.axles, got, tt.want)
			}
		})
	}
}

func TestTrailerRate(t *testing.T) {
	tests := []struct {
		category string
		want     int64
	}{
		{"O1", 50},
		{"O2", 115},
		{"O3", 180},
		{"O4", 295},
		{"o4", 295},
		{"O9", 50},
		{"O", 50},
	}

	s := NewRateSchedule()
	for _, tt := range tests {
		got := s.TrailerRate(tt.category)
		if got.IntPart() != tt.want {
			t.Errorf("TrailerRate(%q) = %s, want %d", tt.category, got, tt.want)
		}
	}
}

func TestAgeCoefficient(t *testing.T) {
	s := NewRateSchedule()

	tests := []struct {
		name   string
		months int
		year   int
		want   string
	}{
		{"new vehicle 2024", 0, 2024, "0.75"},
		{"35 months 2024", 35, 2024, "0.75"},
		{"36 months 2024", 36, 2024, "0.8"},
		{"71 months 2024", 71, 2024, "0.8"},
		{"72 months 2024", 72, 2024, "0.85"},
		{"9 years 2024", 108, 2024, "1"},
		{"12 years 2024", 144, 2024, "1.1"},
		{"13 years 2024", 156, 2024, "1.2"},
		{"30 years 2024", 360, 2024, "1.2"},
		{"new vehicle 2025", 0, 2025, "1"},
		{"36 months 2025", 36, 2025, "1.1"},
		{"72 months 2025", 72, 2025, "1.2"},
		{"108 months 2025", 108, 2025, "1.3"},
		{"144 months 2025", 144, 2025, "1.4"},
		{"180 months 2025", 180, 2025, "1.5"},
		{"30 years 2025", 360, 2025, "1.5"},
		{"later year uses amended table", 72, 2027, "1.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.AgeCoefficient(tt.months, tt.year)
			if got.String() != tt.want {
				t.Errorf("AgeCoefficient(%d, %d) = %s, want %s", tt.months, tt.year, got, tt.want)
			}
		})
	}
}
