package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/dto"
	"github.com/recruvia/cv-insight/internal/middleware"
	"github.com/recruvia/cv-insight/internal/model"
	"github.com/recruvia/cv-insight/internal/repository"
	"github.com/recruvia/cv-insight/internal/usecase"
	"github.com/recruvia/cv-insight/internal/util"
)

type PositionHandler struct {
	positions *repository.PositionRepository
	match     *usecase.MatchUsecase
}

func NewPositionHandler(positions *repository.PositionRepository, match *usecase.MatchUsecase) *PositionHandler {
	return &PositionHandler{positions: positions, match: match}
}

func (h *PositionHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/positions", h.Create)
	app.Get("/positions", h.List)
	app.Get("/positions/:id", h.Get)
	app.Post("/positions/:id/apply", middleware.RateLimiter(10, time.Minute), h.Apply)
	app.Get("/positions/:id/applications", h.Applications)
}

func (h *PositionHandler) Create(c *fiber.Ctx) error {
	var req dto.PositionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "title is required",
		})
	}

	position := &model.Position{
		Title:            req.Title,
		Description:      req.Description,
		SkillsNeeded:     strings.Join(req.SkillsNeeded, ", "),
		Seniority:        req.Seniority,
		Responsibilities: req.Responsibilities,
	}
	if err := h.positions.Create(c.Context(), position); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create position",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Position created",
		Data:    position,
	})
}

func (h *PositionHandler) List(c *fiber.Ctx) error {
	positions, err := h.positions.List(c.Context())
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list positions",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success",
		Data:    positions,
	})
}

func (h *PositionHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid position id",
		}, err)
	}
	position, err := h.positions.FindByID(c.Context(), id)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "position not found",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success",
		Data:    position,
	})
}

// Apply scores a processed CV against the position and records the
// application synchronously.
func (h *PositionHandler) Apply(c *fiber.Ctx) error {
	positionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid position id",
		}, err)
	}

	var req struct {
		CVID string `json:"cv_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	cvID, err := uuid.Parse(req.CVID)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid cv id",
		}, err)
	}

	app, err := h.match.Apply(c.Context(), positionID, cvID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAlreadyApplied):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusConflict,
				Message: err.Error(),
			})
		case errors.Is(err, usecase.ErrCVNotProcessed):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnprocessableEntity,
				Message: err.Error(),
			})
		default:
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "failed to score application",
			}, err)
		}
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Application recorded",
		Data:    dto.NewApplicationDTO(app),
	})
}

func (h *PositionHandler) Applications(c *fiber.Ctx) error {
	positionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid position id",
		}, err)
	}
	apps, err := h.positions.ListApplications(c.Context(), positionID)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list applications",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success",
		Data:    dto.NewApplicationDTOs(apps),
	})
}
