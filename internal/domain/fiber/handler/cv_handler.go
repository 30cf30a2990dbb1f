package handler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/config"
	"github.com/recruvia/cv-insight/internal/dto"
	"github.com/recruvia/cv-insight/internal/middleware"
	"github.com/recruvia/cv-insight/internal/model"
	"github.com/recruvia/cv-insight/internal/response"
	"github.com/recruvia/cv-insight/internal/usecase"
	"github.com/recruvia/cv-insight/internal/util"
	"go.uber.org/zap"
)

const maxUploadSize = 5 * 1024 * 1024

// CVStore is the slice of the CV repository the handler needs.
type CVStore interface {
	Create(ctx context.Context, cv *model.CV) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CV, error)
	FindByHash(ctx context.Context, hash string) (*model.CV, error)
	List(ctx context.Context, page, pageSize int) ([]model.CV, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CVHandler struct {
	cvs       CVStore
	ingestion *usecase.IngestionUsecase
	logger    *zap.Logger
}

func NewCVHandler(cvs CVStore, ingestion *usecase.IngestionUsecase, logger *zap.Logger) *CVHandler {
	return &CVHandler{cvs: cvs, ingestion: ingestion, logger: logger}
}

func (h *CVHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/cvs", middleware.RateLimiter(5, time.Minute), h.Upload)
	app.Get("/cvs", h.List)
	app.Get("/cvs/:id", h.Get)
	app.Post("/cvs/:id/ingest", h.Reingest)
	app.Delete("/cvs/:id", h.Delete)
}

// Upload accepts a PDF, stores it, records the CV row and kicks off
// ingestion in the background. Responds immediately with the unprocessed row.
func (h *CVHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("cv")
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "cv file is required",
		}, err)
	}
	if file.Size > maxUploadSize {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusRequestEntityTooLarge,
			Message: "cv file size is too large (max 5MB)",
		})
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnsupportedMediaType,
			Message: "only PDF files are supported",
		})
	}

	src, err := file.Open()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot read uploaded file",
		}, err)
	}
	hash, err := util.HashContent(src)
	src.Close()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot hash uploaded file",
		}, err)
	}

	// Same bytes uploaded twice come back as the existing record. A lookup
	// failure aborts: falling through could create a duplicate row.
	existing, err := h.cvs.FindByHash(c.Context(), hash)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to check for duplicate upload",
		}, err)
	}
	if existing != nil {
		return util.SuccessResponse(c, util.SuccessResponseFormat{
			Message: "CV already uploaded",
			Data:    dto.NewCVDTO(existing),
		})
	}

	uploadDir := config.LoadAppConfig().UploadDir
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot prepare upload directory",
		}, err)
	}
	storedPath := filepath.Join(uploadDir, fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(file.Filename)))
	if err := c.SaveFile(file, storedPath); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot save cv file",
		}, err)
	}

	cv := &model.CV{
		Filename:    file.Filename,
		StoredPath:  storedPath,
		FileSize:    file.Size,
		ContentHash: hash,
		OwnerID:     c.Get("X-User-ID", "anonymous"),
		Status:      model.CVStatusUnprocessed,
	}
	if err := h.cvs.Create(c.Context(), cv); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to record cv",
		}, err)
	}

	go func(id uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := h.ingestion.IngestAndSummarize(ctx, id); err != nil {
			h.logger.Error("background ingestion failed",
				zap.String("cv_id", id.String()), zap.Error(err))
		}
	}(cv.ID)

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "CV uploaded, processing started",
		Data:    dto.NewCVDTO(cv),
	})
}

func (h *CVHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	cvs, total, err := h.cvs.List(c.Context(), page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list cvs",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success",
		Data:       dto.NewCVDTOs(cvs),
		Pagination: response.NewPagination(page, pageSize, total),
	})
}

func (h *CVHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid cv id",
		}, err)
	}
	cv, err := h.cvs.FindByID(c.Context(), id)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "cv not found",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success",
		Data:    dto.NewCVDTO(cv),
	})
}

// Reingest re-runs the full pipeline for an already uploaded CV.
func (h *CVHandler) Reingest(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid cv id",
		}, err)
	}
	if _, err := h.cvs.FindByID(c.Context(), id); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "cv not found",
		}, err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := h.ingestion.IngestAndSummarize(ctx, id); err != nil {
			h.logger.Error("re-ingestion failed",
				zap.String("cv_id", id.String()), zap.Error(err))
		}
	}()

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Re-ingestion started",
		Data:    fiber.Map{"id": id, "status": model.CVStatusProcessing},
	})
}

// Delete purges the CV's index entries first so no embedding outlives the
// database record, then removes summary, row and stored file.
func (h *CVHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid cv id",
		}, err)
	}
	cv, err := h.cvs.FindByID(c.Context(), id)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "cv not found",
		}, err)
	}

	if err := h.ingestion.PurgeIndex(c.Context(), id); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to purge cv from index",
		}, err)
	}
	if err := h.cvs.Delete(c.Context(), id); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to delete cv",
		}, err)
	}
	if cv.StoredPath != "" {
		if err := os.Remove(cv.StoredPath); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("could not remove stored file",
				zap.String("path", cv.StoredPath), zap.Error(err))
		}
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "CV deleted",
	})
}
