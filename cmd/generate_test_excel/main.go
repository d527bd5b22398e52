package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"motortax-web/internal/service"
)

// Generates the vehicle import template workbook without starting the
// web server. Useful for shipping the template with the documentation.
func main() {
	outputPath := flag.String("out", filepath.Join("storage", "uploads", "vehicle_import_template.xlsx"), "output file path")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	excelService := service.NewExcelService()
	if err := excelService.GenerateVehicleTemplate(*outputPath); err != nil {
		log.Fatalf("Failed to generate template: %v", err)
	}

	fmt.Printf("Template created: %s\n", *outputPath)
}
