package handler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"motortax-web/internal/config"
	"motortax-web/internal/models"
	"motortax-web/internal/repository"
	"motortax-web/internal/service"
	"motortax-web/internal/utils"
	"motortax-web/internal/worker"
)

type DeclarationHandler struct {
	declarationRepo *repository.DeclarationRepository
	taxpayerRepo    *repository.TaxpayerRepository
	vehicleRepo     *repository.VehicleRepository
	excelService    *service.ExcelService
	asynqClient     *asynq.Client
	redis           *redis.Client
	cfg             *config.Config
}

func NewDeclarationHandler(
	declarationRepo *repository.DeclarationRepository,
	taxpayerRepo *repository.TaxpayerRepository,
	vehicleRepo *repository.VehicleRepository,
	excelService *service.ExcelService,
	asynqClient *asynq.Client,
	redisClient *redis.Client,
	cfg *config.Config,
) *DeclarationHandler {
	return &DeclarationHandler{
		declarationRepo: declarationRepo,
		taxpayerRepo:    taxpayerRepo,
		vehicleRepo:     vehicleRepo,
		excelService:    excelService,
		asynqClient:     asynqClient,
		redis:           redisClient,
		cfg:             cfg,
	}
}

type buildDeclarationRequest struct {
	TaxpayerID   int    `json:"taxpayer_id"`
	Year         int    `json:"year"`
	Kind         string `json:"kind"`
	AdvancesPaid string `json:"advances_paid"`
	Notes        string `json:"notes"`
}

func (r *buildDeclarationRequest) normalize(cfg *config.Config) error {
	if r.TaxpayerID <= 0 {
		return fmt.Errorf("taxpayer_id is required")
	}
	if r.Year == 0 {
		r.Year = cfg.DefaultTaxYear
	}
	if r.Year < 2000 || r.Year > 2100 {
		return fmt.Errorf("year %d is out of range", r.Year)
	}
	switch r.Kind {
	case "":
		r.Kind = models.DeclarationRegular
	case models.DeclarationRegular, models.DeclarationCorrective, models.DeclarationSupplementary:
	default:
		return fmt.Errorf("unknown declaration kind %q", r.Kind)
	}
	if r.AdvancesPaid != "" {
		if _, err := decimal.NewFromString(r.AdvancesPaid); err != nil {
			return fmt.Errorf("invalid advances_paid amount")
		}
	}
	return nil
}

func (r *buildDeclarationRequest) advances() decimal.Decimal {
	if r.AdvancesPaid == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(r.AdvancesPaid)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Calculate assembles the full declaration in-process and returns it as
// JSON without persisting anything. Used for previewing the numbers
// before committing to a build.
func (h *DeclarationHandler) Calculate(c *fiber.Ctx) error {
	var req buildDeclarationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := req.normalize(h.cfg); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	taxpayer, err := h.taxpayerRepo.FindByID(req.TaxpayerID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Taxpayer not found", nil)
	}

	vehicles, err := h.vehicleRepo.FindByTaxpayer(req.TaxpayerID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load vehicles", err)
	}

	assembler := service.NewDeclarationAssembler(req.Year)
	declaration := assembler.Assemble(taxpayer, vehicles, req.Kind, req.advances(), req.Notes)

	return utils.SuccessResponse(c, "Declaration calculated successfully", declaration)
}

// Build records a pending declaration and hands the generation off to
// the background worker.
func (h *DeclarationHandler) Build(c *fiber.Ctx) error {
	if h.asynqClient == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background processing is not available", nil)
	}

	var req buildDeclarationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := req.normalize(h.cfg); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if _, err := h.taxpayerRepo.FindByID(req.TaxpayerID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Taxpayer not found", nil)
	}

	record := &models.DeclarationRecord{
		Code:       service.NewDeclarationCode(),
		TaxpayerID: req.TaxpayerID,
		Year:       req.Year,
		Kind:       req.Kind,
		Status:     models.DeclarationPending,
	}
	if err := h.declarationRepo.Create(record); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create declaration", err)
	}

	task, err := worker.NewDeclarationTask(worker.DeclarationTaskPayload{
		DeclarationID: record.ID,
		Code:          record.Code,
		TaxpayerID:    req.TaxpayerID,
		Year:          req.Year,
		Kind:          req.Kind,
		AdvancesPaid:  req.advances().String(),
		Notes:         req.Notes,
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build task", err)
	}

	if _, err := h.asynqClient.Enqueue(task, asynq.Queue("default"), asynq.MaxRetry(3)); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to enqueue declaration task", err)
	}

	return utils.SuccessResponse(c, "Declaration queued for generation", record)
}

func (h *DeclarationHandler) List(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)

	records, total, err := h.declarationRepo.List(params)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve declarations", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, total)
	return utils.PaginatedResponseBuilder(c, "Declarations retrieved successfully", records, pagination)
}

func (h *DeclarationHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid declaration ID", err)
	}

	record, err := h.declarationRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Declaration not found", nil)
	}

	return utils.SuccessResponse(c, "Declaration retrieved successfully", record)
}

// Status reports the worker-side progress of a queued declaration. The
// worker keeps a short-lived status key in Redis; when it has expired
// the persisted record is authoritative.
func (h *DeclarationHandler) Status(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid declaration ID", err)
	}

	record, err := h.declarationRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Declaration not found", nil)
	}

	status := record.Status
	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if live, err := h.redis.Get(ctx, fmt.Sprintf("declaration:status:%d", id)).Result(); err == nil && live != "" {
			status = live
		}
	}

	return utils.SuccessResponse(c, "Declaration status retrieved", fiber.Map{
		"id":     record.ID,
		"code":   record.Code,
		"status": status,
		"error":  record.Error,
	})
}

// DownloadXML serves the generated declaration file.
func (h *DeclarationHandler) DownloadXML(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid declaration ID", err)
	}

	record, err := h.declarationRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Declaration not found", nil)
	}

	if record.Status != models.DeclarationCompleted || record.XMLPath == "" {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Declaration has not been generated yet", nil)
	}

	if _, err := os.Stat(record.XMLPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Declaration file is missing", err)
	}

	return c.Download(record.XMLPath, filepath.Base(record.XMLPath))
}

// ExportSummary renders the assembled declaration as an Excel workbook.
func (h *DeclarationHandler) ExportSummary(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid declaration ID", err)
	}

	record, err := h.declarationRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Declaration not found", nil)
	}

	taxpayer, err := h.taxpayerRepo.FindByID(record.TaxpayerID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Taxpayer not found", nil)
	}

	vehicles, err := h.vehicleRepo.FindByTaxpayer(record.TaxpayerID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load vehicles", err)
	}

	assembler := service.NewDeclarationAssembler(record.Year)
	declaration := assembler.Assemble(taxpayer, vehicles, record.Kind, decimal.Zero, "")
	declaration.Code = record.Code

	if err := os.MkdirAll(h.cfg.StoragePath, 0o755); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to prepare storage directory", err)
	}

	exportName := fmt.Sprintf("%s_summary.xlsx", record.Code)
	exportPath := filepath.Join(h.cfg.StoragePath, exportName)
	if err := h.excelService.ExportDeclarationSummary(declaration, exportPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export summary", err)
	}

	return c.Download(exportPath, exportName)
}
