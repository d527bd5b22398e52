package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"motortax-web/internal/models"
)

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

var vehicleHeaders = []string{
	"Plate", "Category", "First Registration", "Liability From", "Liability To",
	"Displacement cm3", "Power kW", "Weight kg", "Axles",
	"Hybrid", "Gas", "Hydrogen", "Combined Transport", "Exempt", "Exemption EUR",
}

// ParseVehicleFile parses an Excel file and returns the valid vehicles.
func (s *ExcelService) ParseVehicleFile(filePath string) ([]models.Vehicle, error) {
	result, err := s.ParseVehiclesWithValidation(filePath)
	if err != nil {
		return nil, err
	}
	return result.Vehicles, nil
}

// ParseVehiclesWithValidation parses an Excel file and returns a detailed
// validation result. Rows missing a plate or category are reported, not
// fatal.
func (s *ExcelService) ParseVehiclesWithValidation(filePath string) (*models.VehicleImportResult, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("file must contain at least header row and one data row")
	}

	if len(rows[0]) < len(vehicleHeaders) {
		return nil, fmt.Errorf("invalid header format. Expected columns: %v", vehicleHeaders)
	}

	result := &models.VehicleImportResult{
		Vehicles:         []models.Vehicle{},
		ValidationErrors: []models.VehicleImportError{},
		TotalRows:        len(rows) - 1,
		ImportTime:       time.Now(),
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]

		// Skip completely empty rows
		if len(row) == 0 || (len(row) > 0 && row[0] == "" && getCellValue(row, 1) == "") {
			continue
		}

		vehicle, rowErrors := s.parseVehicleRow(i+1, row)
		if len(rowErrors) > 0 {
			result.ValidationErrors = append(result.ValidationErrors, rowErrors...)
			result.ErrorCount++
			continue
		}

		result.Vehicles = append(result.Vehicles, *vehicle)
		result.ValidCount++
	}

	return result, nil
}

func (s *ExcelService) parseVehicleRow(rowNum int, row []string) (*models.Vehicle, []models.VehicleImportError) {
	var errs []models.VehicleImportError

	plate := strings.TrimSpace(getCellValue(row, 0))
	category := strings.TrimSpace(getCellValue(row, 1))

	if plate == "" {
		errs = append(errs, models.VehicleImportError{
			Row: rowNum, Field: "Plate", Value: plate, Message: "Plate is required",
		})
	}
	if category == "" {
		errs = append(errs, models.VehicleImportError{
			Row: rowNum, Field: "Category", Value: category, Message: "Category is required",
		})
	} else if models.Classify(category) == models.ClassUnknown {
		errs = append(errs, models.VehicleImportError{
			Row: rowNum, Field: "Category", Value: category,
			Message: "Category must be one of L, M1, M2, M3, N1, N2, N3, O1-O4",
		})
	}

	axlesStr := strings.TrimSpace(getCellValue(row, 8))
	axles := 0
	if axlesStr != "" {
		parsed, err := strconv.Atoi(axlesStr)
		if err != nil || parsed < 0 {
			errs = append(errs, models.VehicleImportError{
				Row: rowNum, Field: "Axles", Value: axlesStr, Message: "Axles must be a whole number",
			})
		} else {
			axles = parsed
		}
	}

	exemption := decimal.Zero
	exemptionStr := strings.TrimSpace(getCellValue(row, 14))
	if exemptionStr != "" && exemptionStr != "-" {
		parsed, err := decimal.NewFromString(strings.ReplaceAll(exemptionStr, ",", ""))
		if err != nil {
			errs = append(errs, models.VehicleImportError{
				Row: rowNum, Field: "Exemption EUR", Value: exemptionStr, Message: "Exemption must be a number",
			})
		} else {
			exemption = parsed
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &models.Vehicle{
		Plate:             plate,
		Category:          category,
		FirstRegistration: strings.TrimSpace(getCellValue(row, 2)),
		LiabilityFrom:     strings.TrimSpace(getCellValue(row, 3)),
		LiabilityTo:       strings.TrimSpace(getCellValue(row, 4)),
		Displacement:      parseFloat(getCellValue(row, 5)),
		PowerKW:           parseFloat(getCellValue(row, 6)),
		WeightKG:          parseFloat(getCellValue(row, 7)),
		AxleCount:         axles,
		Hybrid:            parseBoolValue(getCellValue(row, 9)),
		Gas:               parseBoolValue(getCellValue(row, 10)),
		Hydrogen:          parseBoolValue(getCellValue(row, 11)),
		CombinedTransport: parseBoolValue(getCellValue(row, 12)),
		Exempt:            parseBoolValue(getCellValue(row, 13)),
		Exemption:         exemption,
	}, nil
}

// GenerateVehicleTemplate creates a template Excel file for vehicle upload
func (s *ExcelService) GenerateVehicleTemplate(outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Vehicles"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	for i, header := range vehicleHeaders {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(vehicleHeaders)-1)), headerStyle)

	// Add sample data
	sampleData := [][]interface{}{
		{"BA123AB", "M1", "10.5.2018", "1.1.2024", "", 1998, 110, 1950, 2, "No", "No", "No", "No", "No", ""},
		{"BA456CD", "N1", "1.6.2020", "1.1.2024", "", 2300, 96, 3500, 2, "No", "No", "No", "No", "No", ""},
		{"BA789EF", "O4", "1.1.2015", "1.1.2024", "", 0, 0, 24000, 3, "No", "No", "No", "No", "No", ""},
		{"BA321GH", "M1", "15.3.2023", "1.7.2024", "", 0, 150, 2100, 2, "No", "No", "No", "No", "No", ""},
	}

	for rowIdx, rowData := range sampleData {
		row := rowIdx + 2
		for colIdx, value := range rowData {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range vehicleHeaders {
		colName := getColumnName(i)
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	// Instructions live on their own sheet so the data sheet parses
	// cleanly through the importer.
	instructionsSheet := "Instructions"
	if _, err := f.NewSheet(instructionsSheet); err != nil {
		return err
	}
	instructions := []string{
		"Instructions:",
		"1. Plate: vehicle registration number",
		"2. Category: L, M1, M2, M3, N1, N2, N3 or O1-O4",
		"3. First Registration: date in D.M.YYYY format",
		"4. Liability From / To: start and end of the tax liability, D.M.YYYY",
		"5. Displacement cm3: engine displacement (0 for electric vehicles)",
		"6. Power kW: engine power (required for electric vehicles)",
		"7. Weight kg: total weight, used for N1 vehicles",
		"8. Axles: axle count, defaults to 2",
		"9. Hybrid/Gas/Hydrogen/Combined Transport/Exempt: Yes or No",
		"10. Exemption EUR: exemption amount, empty means full tax when not exempt",
		"",
		"Note: Do not modify the header row. Fill data starting from row 2.",
	}

	for i, instruction := range instructions {
		cell := fmt.Sprintf("A%d", i+1)
		f.SetCellValue(instructionsSheet, cell, instruction)
	}
	f.SetColWidth(instructionsSheet, "A", "A", 80)

	instructionStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0F8FF"}, Pattern: 1},
	})
	f.SetCellStyle(instructionsSheet, "A1", "A1", instructionStyle)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// ExportDeclarationSummary exports computed vehicle slots to an Excel
// overview, one row per vehicle with the full rate trace.
func (s *ExcelService) ExportDeclarationSummary(d *models.Declaration, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Declaration"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{
		"Plate", "Category", "First Registration", "Base Rate", "Rate After Age",
		"Rate After Eco", "Final Rate", "Months", "Tax", "Exemption", "Tax Due",
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	row := 2
	writeSlot := func(slot *models.VehicleSlot) {
		if slot == nil {
			return
		}
		values := []interface{}{
			slot.Plate,
			slot.Category,
			slot.FirstRegistration,
			slot.BaseRate.String(),
			slot.RateAfterAge.StringFixed(2),
			slot.RateAfterEco.StringFixed(2),
			slot.FinalRate.StringFixed(2),
			slot.MonthsOfUse,
			slot.Tax.StringFixed(2),
			slot.Exemption.StringFixed(2),
			slot.TaxAfterExemption.StringFixed(2),
		}
		for colIdx, value := range values {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
		row++
	}

	for _, page := range d.Pages {
		writeSlot(page.Left)
		writeSlot(page.Right)
	}

	// Summary rows below the vehicle list
	summaryRow := row + 1
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "Vehicles:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow), d.Summary.VehicleCount)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow+1), "Total Tax:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow+1), d.Summary.TotalTax.StringFixed(2))
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow+2), "Exemption:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow+2), d.Summary.TotalExemption.StringFixed(2))
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow+3), "Advances Paid:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow+3), d.Summary.AdvancesPaid.StringFixed(2))
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow+4), "Tax Due:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow+4), d.Summary.TaxDue.StringFixed(2))

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("A%d", summaryRow+4), summaryStyle)

	for i := range headers {
		colName := getColumnName(i)
		f.SetColWidth(sheetName, colName, colName, 16)
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// GenerateImportErrorReport creates an Excel report with import validation errors
func (s *ExcelService) GenerateImportErrorReport(result *models.VehicleImportResult, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Errors"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{"Row Number", "Field", "Error Message", "Invalid Value"}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE6E6"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	for rowIdx, importErr := range result.ValidationErrors {
		row := rowIdx + 2
		values := []interface{}{
			importErr.Row,
			importErr.Field,
			importErr.Message,
			importErr.Value,
		}

		for colIdx, value := range values {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}

		errorStyle, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFFFCC"}, Pattern: 1},
		})
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", getColumnName(len(headers)-1), row), errorStyle)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "C", 50)
	f.SetColWidth(sheetName, "D", "D", 25)

	// Add summary section
	summaryStartRow := len(result.ValidationErrors) + 4
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow), "Import Summary")
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+1), "Total Rows Processed:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+1), result.TotalRows)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+2), "Valid Vehicles:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+2), result.ValidCount)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+3), "Errors Found:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+3), result.ErrorCount)

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryStartRow), fmt.Sprintf("A%d", summaryStartRow), summaryStyle)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// Helper functions
func getCellValue(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)

	// Handle dash "-" (with or without whitespace) as 0
	if s == "-" || s == "" {
		return 0.0
	}

	// Remove commas (thousand separators) if present
	s = strings.ReplaceAll(s, ",", "")

	if result, err := strconv.ParseFloat(s, 64); err == nil {
		return result
	}

	var result float64
	fmt.Sscanf(s, "%f", &result)
	return result
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}

func parseBoolValue(s string) bool {
	s = strings.TrimSpace(s)
	return s == "Yes" || s == "yes" || s == "Y" || s == "y" || s == "1" || s == "true" || s == "TRUE"
}
