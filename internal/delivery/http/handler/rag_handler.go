package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pastpaper/pastpaper-be/internal/delivery/http/domain"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/entity"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/usecase"
	"github.com/pastpaper/pastpaper-be/internal/pkg/rag"
	"github.com/pastpaper/pastpaper-be/internal/pkg/response"
	"github.com/pastpaper/pastpaper-be/internal/pkg/validate"
)

type (
	RagHandler interface {
		Query(ctx *fiber.Ctx) error
		Retrieve(ctx *fiber.Ctx) error
	}

	ragHandler struct {
		validator *validate.Validator
		logger    *logrus.Logger
		usecase   usecase.RagUsecase
	}
)

func NewRagHandler(validator *validate.Validator, logger *logrus.Logger, usecase usecase.RagUsecase) RagHandler {
	return &ragHandler{
		validator: validator,
		logger:    logger,
		usecase:   usecase,
	}
}

// bucketKey attributes backend usage to the caller: the authenticated
// student when one is present, the client IP otherwise.
func bucketKey(ctx *fiber.Ctx) string {
	if id := studentID(ctx); id != uuid.Nil {
		return rag.UserBucket(id.String())
	}
	return rag.IPBucket(ctx.IP())
}

// POST /api/rag/query
func (h *ragHandler) Query(ctx *fiber.Ctx) error {
	var req entity.RagQueryRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.RAG_QUERY_FAILED, err, h.logger).Send(ctx)
	}

	result, err := h.usecase.Query(ctx.UserContext(), bucketKey(ctx), req)
	if err != nil {
		return response.NewFailed(domain.RAG_QUERY_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.RAG_QUERY_SUCCESS, result, nil).Send(ctx)
}

// POST /api/rag/retrieve
func (h *ragHandler) Retrieve(ctx *fiber.Ctx) error {
	var req entity.RagRetrieveRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.RAG_RETRIEVE_FAILED, err, h.logger).Send(ctx)
	}

	result, err := h.usecase.Retrieve(ctx.UserContext(), bucketKey(ctx), req)
	if err != nil {
		return response.NewFailed(domain.RAG_RETRIEVE_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.RAG_RETRIEVE_SUCCESS, result, nil).Send(ctx)
}
