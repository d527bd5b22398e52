package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"motortax-web/internal/models"
	"motortax-web/internal/repository"
	"motortax-web/internal/service"
	"motortax-web/internal/utils"
)

type TaxpayerHandler struct {
	taxpayerRepo    *repository.TaxpayerRepository
	registryService *service.RegistryService
}

func NewTaxpayerHandler(taxpayerRepo *repository.TaxpayerRepository, registryService *service.RegistryService) *TaxpayerHandler {
	return &TaxpayerHandler{
		taxpayerRepo:    taxpayerRepo,
		registryService: registryService,
	}
}

func (h *TaxpayerHandler) List(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)

	taxpayers, total, err := h.taxpayerRepo.List(params)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve taxpayers", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, total)
	return utils.PaginatedResponseBuilder(c, "Taxpayers retrieved successfully", taxpayers, pagination)
}

func (h *TaxpayerHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid taxpayer ID", err)
	}

	taxpayer, err := h.taxpayerRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Taxpayer not found", nil)
	}

	return utils.SuccessResponse(c, "Taxpayer retrieved successfully", taxpayer)
}

func (h *TaxpayerHandler) Create(c *fiber.Ctx) error {
	var req models.TaxpayerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.DIC == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "DIC is required", nil)
	}

	if existing, _ := h.taxpayerRepo.FindByDIC(req.DIC); existing != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Taxpayer with this DIC already exists", nil)
	}

	taxpayer := &models.Taxpayer{
		DIC:         req.DIC,
		Individual:  req.Individual,
		Corporate:   req.Corporate,
		Foreign:     req.Foreign,
		Name:        req.Name,
		BirthDate:   req.BirthDate,
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		PostalCode:  req.PostalCode,
		City:        req.City,
		Country:     req.Country,
		Phone:       req.Phone,
		Email:       req.Email,
	}

	if err := h.taxpayerRepo.Create(taxpayer); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create taxpayer", err)
	}

	return utils.SuccessResponse(c, "Taxpayer created successfully", taxpayer)
}

func (h *TaxpayerHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid taxpayer ID", err)
	}

	taxpayer, err := h.taxpayerRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Taxpayer not found", nil)
	}

	var req models.TaxpayerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.DIC != "" {
		taxpayer.DIC = req.DIC
	}
	taxpayer.Individual = req.Individual
	taxpayer.Corporate = req.Corporate
	taxpayer.Foreign = req.Foreign
	taxpayer.Name = req.Name
	taxpayer.BirthDate = req.BirthDate
	taxpayer.Street = req.Street
	taxpayer.HouseNumber = req.HouseNumber
	taxpayer.PostalCode = req.PostalCode
	taxpayer.City = req.City
	taxpayer.Country = req.Country
	taxpayer.Phone = req.Phone
	taxpayer.Email = req.Email

	if err := h.taxpayerRepo.Update(taxpayer); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update taxpayer", err)
	}

	return utils.SuccessResponse(c, "Taxpayer updated successfully", taxpayer)
}

func (h *TaxpayerHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid taxpayer ID", err)
	}

	if _, err := h.taxpayerRepo.FindByID(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Taxpayer not found", nil)
	}

	if err := h.taxpayerRepo.Delete(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete taxpayer", err)
	}

	return utils.SuccessResponse(c, "Taxpayer deleted successfully", nil)
}

// Verify looks the taxpayer up in the public registers by its DIC and
// fills in missing identification data from the register record.
func (h *TaxpayerHandler) Verify(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid taxpayer ID", err)
	}

	taxpayer, err := h.taxpayerRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Taxpayer not found", nil)
	}

	record, err := h.registryService.Verify(c.Context(), taxpayer.DIC)
	if err != nil {
		if err == service.ErrRegistryNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Taxpayer not found in public registers", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Register lookup failed", err)
	}

	taxpayer.MergeRegistry(record)
	if err := h.taxpayerRepo.Update(taxpayer); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save verified taxpayer", err)
	}

	return utils.SuccessResponse(c, "Taxpayer verified successfully", fiber.Map{
		"taxpayer": taxpayer,
		"registry": record,
	})
}
