package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"motortax-web/internal/config"
	"motortax-web/internal/models"
	"motortax-web/internal/repository"
	"motortax-web/internal/service"
	"motortax-web/internal/utils"
)

type VehicleHandler struct {
	vehicleRepo  *repository.VehicleRepository
	taxpayerRepo *repository.TaxpayerRepository
	excelService *service.ExcelService
	cfg          *config.Config
}

func NewVehicleHandler(
	vehicleRepo *repository.VehicleRepository,
	taxpayerRepo *repository.TaxpayerRepository,
	excelService *service.ExcelService,
	cfg *config.Config,
) *VehicleHandler {
	return &VehicleHandler{
		vehicleRepo:  vehicleRepo,
		taxpayerRepo: taxpayerRepo,
		excelService: excelService,
		cfg:          cfg,
	}
}

func (h *VehicleHandler) List(c *fiber.Ctx) error {
	taxpayerID, err := strconv.Atoi(c.Params("taxpayerId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid taxpayer ID", err)
	}

	params := utils.GetPaginationParams(c)
	vehicles, total, err := h.vehicleRepo.List(taxpayerID, params)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve vehicles", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, total)
	return utils.PaginatedResponseBuilder(c, "Vehicles retrieved successfully", vehicles, pagination)
}

func (h *VehicleHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid vehicle ID", err)
	}

	vehicle, err := h.vehicleRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Vehicle not found", nil)
	}

	return utils.SuccessResponse(c, "Vehicle retrieved successfully", vehicle)
}

func (h *VehicleHandler) Create(c *fiber.Ctx) error {
	taxpayerID, err := strconv.Atoi(c.Params("taxpayerId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid taxpayer ID", err)
	}

	if _, err := h.taxpayerRepo.FindByID(taxpayerID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Taxpayer not found", nil)
	}

	var vehicle models.Vehicle
	if err := c.BodyParser(&vehicle); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if vehicle.Plate == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Plate is required", nil)
	}
	if models.Classify(vehicle.Category) == models.ClassUnknown {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown vehicle category", nil)
	}

	vehicle.TaxpayerID = taxpayerID
	if err := h.vehicleRepo.Create(&vehicle); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create vehicle", err)
	}

	return utils.SuccessResponse(c, "Vehicle created successfully", vehicle)
}

func (h *VehicleHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid vehicle ID", err)
	}

	existing, err := h.vehicleRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Vehicle not found", nil)
	}

	var vehicle models.Vehicle
	if err := c.BodyParser(&vehicle); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if vehicle.Category != "" && models.Classify(vehicle.Category) == models.ClassUnknown {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown vehicle category", nil)
	}

	vehicle.ID = existing.ID
	vehicle.TaxpayerID = existing.TaxpayerID
	if err := h.vehicleRepo.Update(&vehicle); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update vehicle", err)
	}

	return utils.SuccessResponse(c, "Vehicle updated successfully", vehicle)
}

func (h *VehicleHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid vehicle ID", err)
	}

	if _, err := h.vehicleRepo.FindByID(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Vehicle not found", nil)
	}

	if err := h.vehicleRepo.Delete(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete vehicle", err)
	}

	return utils.SuccessResponse(c, "Vehicle deleted successfully", nil)
}

type calculateVehicleRequest struct {
	Year    int            `json:"year"`
	Vehicle models.Vehicle `json:"vehicle"`
}

// Calculate runs the tax computation for a single vehicle without
// persisting anything.
func (h *VehicleHandler) Calculate(c *fiber.Ctx) error {
	var req calculateVehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.Year == 0 {
		req.Year = h.cfg.DefaultTaxYear
	}
	if req.Year < 2000 || req.Year > 2100 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Year is out of range", nil)
	}

	calc := service.NewTaxCalculator(req.Year)
	result := calc.ComputeForVehicle(&req.Vehicle)

	return utils.SuccessResponse(c, "Tax calculated successfully", fiber.Map{
		"year":    req.Year,
		"vehicle": req.Vehicle,
		"result":  result,
	})
}

// Import accepts an Excel workbook of vehicles, validates every row and
// stores the valid ones for the taxpayer in one batch. Row errors are
// returned alongside the import counts rather than failing the request.
func (h *VehicleHandler) Import(c *fiber.Ctx) error {
	taxpayerID, err := strconv.Atoi(c.Params("taxpayerId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid taxpayer ID", err)
	}

	if _, err := h.taxpayerRepo.FindByID(taxpayerID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Taxpayer not found", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := filepath.Ext(file.Filename)
	if ext != ".xlsx" && ext != ".xls" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only Excel files (.xlsx, .xls) are allowed", nil)
	}

	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	importCode := fmt.Sprintf("IMPORT-%s", uuid.New().String()[:8])
	filePath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("%s%s", importCode, ext))
	if err := os.MkdirAll(h.cfg.UploadPath, 0o755); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to prepare upload directory", err)
	}
	if err := c.SaveFile(file, filePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
	}

	result, err := h.excelService.ParseVehiclesWithValidation(filePath)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse Excel file", err)
	}

	if len(result.Vehicles) > 0 {
		if err := h.vehicleRepo.CreateBatch(taxpayerID, result.Vehicles); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store imported vehicles", err)
		}
	}

	errorReport := ""
	if result.ErrorCount > 0 {
		errorReport = fmt.Sprintf("%s_errors.xlsx", importCode)
		reportPath := filepath.Join(h.cfg.UploadPath, errorReport)
		if err := h.excelService.GenerateImportErrorReport(result, reportPath); err != nil {
			utils.GetLogger().WithError(err).Error("failed to generate import error report")
			errorReport = ""
		}
	}

	return utils.SuccessResponse(c, "Import completed", fiber.Map{
		"import_code":  importCode,
		"total_rows":   result.TotalRows,
		"valid_count":  result.ValidCount,
		"error_count":  result.ErrorCount,
		"errors":       result.ValidationErrors,
		"error_report": errorReport,
		"import_time":  result.ImportTime,
	})
}

// ErrorReport serves a previously generated import error workbook.
func (h *VehicleHandler) ErrorReport(c *fiber.Ctx) error {
	filename := filepath.Base(c.Params("filename"))
	if filepath.Ext(filename) != ".xlsx" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid report filename", nil)
	}

	reportPath := filepath.Join(h.cfg.UploadPath, filename)
	if _, err := os.Stat(reportPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Report not found", nil)
	}

	return c.Download(reportPath, filename)
}

// Template serves a ready-to-fill import workbook.
func (h *VehicleHandler) Template(c *fiber.Ctx) error {
	if err := os.MkdirAll(h.cfg.UploadPath, 0o755); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to prepare upload directory", err)
	}

	templatePath := filepath.Join(h.cfg.UploadPath, "vehicle_import_template.xlsx")
	if err := h.excelService.GenerateVehicleTemplate(templatePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate template", err)
	}

	return c.Download(templatePath, "vehicle_import_template.xlsx")
}
