package models

import "time"

// VehicleImportError describes one rejected row of an uploaded workbook.
type VehicleImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// VehicleImportResult is the outcome of parsing a vehicle workbook.
// Rows with a plate and a category are accepted; everything else is
// reported, never fatal.
type VehicleImportResult struct {
	Vehicles         []Vehicle            `json:"vehicles"`
	ValidationErrors []VehicleImportError `json:"validation_errors"`
	TotalRows        int                  `json:"total_rows"`
	ValidCount       int                  `json:"valid_count"`
	ErrorCount       int                  `json:"error_count"`
	ImportTime       time.Time            `json:"import_time"`
}
