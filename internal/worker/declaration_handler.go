package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"motortax-web/internal/config"
	"motortax-web/internal/models"
	"motortax-web/internal/repository"
	"motortax-web/internal/service"
	"motortax-web/internal/utils"
)

type DeclarationTaskHandler struct {
	db              *sqlx.DB
	redis           *redis.Client
	cfg             *config.Config
	taxpayerRepo    *repository.TaxpayerRepository
	vehicleRepo     *repository.VehicleRepository
	declarationRepo *repository.DeclarationRepository
	xmlService      *service.XMLService
}

func NewDeclarationTaskHandler(db *sqlx.DB, redis *redis.Client, cfg *config.Config) *DeclarationTaskHandler {
	return &DeclarationTaskHandler{
		db:              db,
		redis:           redis,
		cfg:             cfg,
		taxpayerRepo:    repository.NewTaxpayerRepository(db),
		vehicleRepo:     repository.NewVehicleRepository(db),
		declarationRepo: repository.NewDeclarationRepository(db),
		xmlService:      service.NewXMLService(cfg.StoragePath),
	}
}

type DeclarationTaskPayload struct {
	DeclarationID int    `json:"declaration_id"`
	Code          string `json:"code"`
	TaxpayerID    int    `json:"taxpayer_id"`
	Year          int    `json:"year"`
	Kind          string `json:"kind"`
	AdvancesPaid  string `json:"advances_paid"`
	Notes         string `json:"notes"`
}

// NewDeclarationTask builds the asynq task for one declaration run.
func NewDeclarationTask(payload DeclarationTaskPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeclarationGenerate, data), nil
}

func (h *DeclarationTaskHandler) setStatus(ctx context.Context, id int, status string) {
	key := fmt.Sprintf("declaration:status:%d", id)
	h.redis.Set(ctx, key, status, 24*time.Hour)
}

// Handle assembles and renders one declaration: load the taxpayer and
// vehicle data, run the calculator over every vehicle, write the XML
// file and record the outcome.
func (h *DeclarationTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	log := utils.GetLogger()

	var payload DeclarationTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.WithField("code", payload.Code).WithField("year", payload.Year).Info("generating declaration")
	h.setStatus(ctx, payload.DeclarationID, models.DeclarationPending)

	record, err := h.declarationRepo.FindByID(payload.DeclarationID)
	if err != nil {
		return fmt.Errorf("failed to load declaration %d: %w", payload.DeclarationID, err)
	}
	if record.Status == models.DeclarationCompleted {
		log.WithField("code", payload.Code).Info("declaration already completed, skipping")
		return nil
	}

	taxpayer, err := h.taxpayerRepo.FindByID(payload.TaxpayerID)
	if err != nil {
		h.fail(ctx, payload.DeclarationID, fmt.Sprintf("taxpayer %d not found", payload.TaxpayerID))
		return fmt.Errorf("failed to load taxpayer: %w", err)
	}

	vehicles, err := h.vehicleRepo.FindByTaxpayer(payload.TaxpayerID)
	if err != nil {
		h.fail(ctx, payload.DeclarationID, "failed to load vehicles")
		return fmt.Errorf("failed to load vehicles: %w", err)
	}

	advances, err := decimal.NewFromString(payload.AdvancesPaid)
	if err != nil {
		advances = decimal.Zero
	}

	assembler := service.NewDeclarationAssembler(payload.Year)
	declaration := assembler.Assemble(taxpayer, vehicles, payload.Kind, advances, payload.Notes)
	declaration.Code = payload.Code

	xmlPath, err := h.xmlService.WriteFile(declaration)
	if err != nil {
		h.fail(ctx, payload.DeclarationID, "failed to write XML file")
		return fmt.Errorf("failed to write XML: %w", err)
	}

	if err := h.declarationRepo.MarkCompleted(payload.DeclarationID, xmlPath, declaration.Summary.TotalTax.StringFixed(2)); err != nil {
		return fmt.Errorf("failed to mark declaration completed: %w", err)
	}
	h.setStatus(ctx, payload.DeclarationID, models.DeclarationCompleted)

	log.WithField("code", payload.Code).
		WithField("vehicles", declaration.Summary.VehicleCount).
		WithField("total_tax", declaration.Summary.TotalTax.StringFixed(2)).
		WithField("xml_path", xmlPath).
		Info("declaration generated")

	return nil
}

func (h *DeclarationTaskHandler) fail(ctx context.Context, id int, msg string) {
	if err := h.declarationRepo.MarkFailed(id, msg); err != nil {
		utils.GetLogger().WithError(err).Error("failed to record declaration failure")
	}
	h.setStatus(ctx, id, models.DeclarationFailed)
}
