package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/recruvia/cv-insight/internal/dto"
	"github.com/recruvia/cv-insight/internal/middleware"
	"github.com/recruvia/cv-insight/internal/usecase"
	"github.com/recruvia/cv-insight/internal/util"
)

type ChatHandler struct {
	chat *usecase.ChatUsecase
}

func NewChatHandler(chat *usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/chat", middleware.RateLimiter(10, time.Minute), h.Chat)
	app.Get("/chat/history", h.History)
}

func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if strings.TrimSpace(req.Message) == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "message is required",
		})
	}

	result, err := h.chat.Chat(c.Context(), req.UserID, req.Message)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to answer message",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success",
		Data:    dto.NewChatResponseDTO(result),
	})
}

func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID := c.Query("user_id", "anonymous")
	limit := c.QueryInt("limit", 20)

	messages, err := h.chat.History(c.Context(), userID, limit)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to load chat history",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success",
		Data:    messages,
	})
}
