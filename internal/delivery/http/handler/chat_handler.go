package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/pastpaper/pastpaper-be/internal/delivery/http/domain"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/entity"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/usecase"
	"github.com/pastpaper/pastpaper-be/internal/pkg/response"
	"github.com/pastpaper/pastpaper-be/internal/pkg/validate"
)

type (
	ChatHandler interface {
		CreateSession(ctx *fiber.Ctx) error
		ListSessions(ctx *fiber.Ctx) error
		SendMessage(ctx *fiber.Ctx) error
		GetHistory(ctx *fiber.Ctx) error
		DeleteSession(ctx *fiber.Ctx) error
	}

	chatHandler struct {
		validator *validate.Validator
		logger    *logrus.Logger
		usecase   usecase.ChatUsecase
	}
)

func NewChatHandler(validator *validate.Validator, logger *logrus.Logger, usecase usecase.ChatUsecase) ChatHandler {
	return &chatHandler{
		validator: validator,
		logger:    logger,
		usecase:   usecase,
	}
}

// POST /api/chat/sessions
func (h *chatHandler) CreateSession(ctx *fiber.Ctx) error {
	var req entity.CreateChatSessionRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.CHAT_SESSION_CREATE_FAILED, err, h.logger).Send(ctx)
	}

	session, err := h.usecase.CreateSession(ctx.UserContext(), studentID(ctx), req)
	if err != nil {
		return response.NewFailed(domain.CHAT_SESSION_CREATE_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.CHAT_SESSION_CREATE_SUCCESS, session, nil).Send(ctx)
}

// GET /api/chat/sessions
func (h *chatHandler) ListSessions(ctx *fiber.Ctx) error {
	sessions, err := h.usecase.ListSessions(ctx.UserContext(), studentID(ctx))
	if err != nil {
		return response.NewFailed(domain.CHAT_SESSION_LIST_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.CHAT_SESSION_LIST_SUCCESS, sessions, nil).Send(ctx)
}

// POST /api/chat/sessions/:session_id/messages
func (h *chatHandler) SendMessage(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return response.NewFailed(domain.CHAT_SEND_FAILED, err, h.logger).Send(ctx)
	}

	var req entity.ChatRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.CHAT_SEND_FAILED, err, h.logger).Send(ctx)
	}

	reply, err := h.usecase.SendMessage(ctx.UserContext(), studentID(ctx), sessionID, req.Message)
	if err != nil {
		return response.NewFailed(domain.CHAT_SEND_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.CHAT_SEND_SUCCESS, reply, nil).Send(ctx)
}

// GET /api/chat/sessions/:session_id/history
func (h *chatHandler) GetHistory(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return response.NewFailed(domain.CHAT_HISTORY_FAILED, err, h.logger).Send(ctx)
	}

	history, err := h.usecase.GetHistory(ctx.UserContext(), studentID(ctx), sessionID)
	if err != nil {
		return response.NewFailed(domain.CHAT_HISTORY_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.CHAT_HISTORY_SUCCESS, history, nil).Send(ctx)
}

// DELETE /api/chat/sessions/:session_id
func (h *chatHandler) DeleteSession(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return response.NewFailed(domain.CHAT_SESSION_DELETE_FAILED, err, h.logger).Send(ctx)
	}

	if err := h.usecase.DeleteSession(ctx.UserContext(), studentID(ctx), sessionID); err != nil {
		return response.NewFailed(domain.CHAT_SESSION_DELETE_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.CHAT_SESSION_DELETE_SUCCESS, nil, nil).Send(ctx)
}
