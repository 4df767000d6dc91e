package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/pastpaper/pastpaper-be/internal/delivery/http/domain"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/usecase"
	"github.com/pastpaper/pastpaper-be/internal/pkg/response"
)

type (
	ProgressHandler interface {
		GetProgress(ctx *fiber.Ctx) error
	}

	progressHandler struct {
		logger  *logrus.Logger
		usecase usecase.ProgressUsecase
	}
)

func NewProgressHandler(logger *logrus.Logger, usecase usecase.ProgressUsecase) ProgressHandler {
	return &progressHandler{
		logger:  logger,
		usecase: usecase,
	}
}

// GET /api/progress
func (h *progressHandler) GetProgress(ctx *fiber.Ctx) error {
	progress, err := h.usecase.GetProgress(ctx.UserContext(), studentID(ctx))
	if err != nil {
		return response.NewFailed(domain.PROGRESS_GET_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.PROGRESS_GET_SUCCESS, progress, nil).Send(ctx)
}
