package service

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"motortax-web/internal/models"
)

func writeVehicleWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, header := range vehicleHeaders {
		f.SetCellValue(sheet, fmt.Sprintf("%s1", getColumnName(i)), header)
	}
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", getColumnName(colIdx), rowIdx+2), value)
		}
	}

	path := filepath.Join(t.TempDir(), "vehicles.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestParseVehiclesWithValidation(t *testing.T) {
	path := writeVehicleWorkbook(t, [][]interface{}{
		{"BA123AB", "M1", "10.5.2018", "1.1.2024", "", 1998, 110, 1950, 2, "No", "No", "No", "No", "No", ""},
		{"BA456CD", "N1", "1.6.2020", "1.1.2024", "", 2300, 96, 3500, "", "Yes", "No", "No", "No", "No", ""},
		{"", "M1", "1.1.2020", "", "", 1000, 0, 0, "", "No", "No", "No", "No", "No", ""},
		{"KE999XY", "X9", "1.1.2020", "", "", 1000, 0, 0, "", "No", "No", "No", "No", "No", ""},
	})

	result, err := NewExcelService().ParseVehiclesWithValidation(path)
	if err != nil {
		t.Fatalf("ParseVehiclesWithValidation: %v", err)
	}

	if result.ValidCount != 2 || result.ErrorCount != 2 {
		t.Fatalf("valid = %d, errors = %d, want 2 and 2", result.ValidCount, result.ErrorCount)
	}
	if result.TotalRows != 4 {
		t.Fatalf("total rows = %d, want 4", result.TotalRows)
	}

	v := result.Vehicles[0]
	if v.Plate != "BA123AB" || v.Category != "M1" || v.Displacement != 1998 || v.AxleCount != 2 {
		t.Fatalf("first vehicle = %+v", v)
	}
	if !result.Vehicles[1].Hybrid {
		t.Fatal("second vehicle must be hybrid")
	}

	fields := map[string]bool{}
	for _, e := range result.ValidationErrors {
		fields[e.Field] = true
	}
	if !fields["Plate"] || !fields["Category"] {
		t.Fatalf("validation errors = %+v", result.ValidationErrors)
	}
}

func TestParseVehiclesSkipsEmptyRows(t *testing.T) {
	path := writeVehicleWorkbook(t, [][]interface{}{
		{"BA123AB", "M1", "10.5.2018", "", "", 1998, 110, 1950, 2, "No", "No", "No", "No", "No", ""},
		{"", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		{"BA456CD", "O4", "1.1.2015", "", "", 0, 0, 24000, 3, "No", "No", "No", "No", "No", ""},
	})

	result, err := NewExcelService().ParseVehiclesWithValidation(path)
	if err != nil {
		t.Fatalf("ParseVehiclesWithValidation: %v", err)
	}
	if result.ValidCount != 2 || result.ErrorCount != 0 {
		t.Fatalf("valid = %d, errors = %d, want 2 and 0", result.ValidCount, result.ErrorCount)
	}
}

func TestParseVehiclesRejectsBadHeader(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "Plate")
	f.SetCellValue(sheet, "A2", "BA123AB")
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	f.Close()

	if _, err := NewExcelService().ParseVehiclesWithValidation(path); err == nil {
		t.Fatal("expected header validation error")
	}
}

func TestGenerateVehicleTemplateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")
	svc := NewExcelService()

	if err := svc.GenerateVehicleTemplate(path); err != nil {
		t.Fatalf("GenerateVehicleTemplate: %v", err)
	}

	// The shipped template must parse cleanly through the importer.
	result, err := svc.ParseVehiclesWithValidation(path)
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	if result.ValidCount == 0 {
		t.Fatal("template sample rows did not import")
	}
	if result.ErrorCount != 0 {
		t.Fatalf("template sample rows produced errors: %+v", result.ValidationErrors)
	}
}

func TestExportDeclarationSummary(t *testing.T) {
	a := NewDeclarationAssembler(2024)
	d := a.Assemble(testTaxpayer(), []models.Vehicle{
		{Plate: "BA111AA", Category: "M1", Displacement: 1998, FirstRegistration: "10.5.2018"},
	}, models.DeclarationRegular, decimal.Zero, "")

	path := filepath.Join(t.TempDir(), "summary.xlsx")
	if err := NewExcelService().ExportDeclarationSummary(d, path); err != nil {
		t.Fatalf("ExportDeclarationSummary: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open exported file: %v", err)
	}
	defer f.Close()

	plate, _ := f.GetCellValue("Declaration", "A2")
	if plate != "BA111AA" {
		t.Fatalf("exported plate = %q", plate)
	}
	tax, _ := f.GetCellValue("Declaration", "I2")
	if tax != "125.80" {
		t.Fatalf("exported tax = %q, want 125.80", tax)
	}
}
