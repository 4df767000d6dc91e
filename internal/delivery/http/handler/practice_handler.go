package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pastpaper/pastpaper-be/internal/delivery/http/domain"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/entity"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/usecase"
	"github.com/pastpaper/pastpaper-be/internal/pkg/response"
	"github.com/pastpaper/pastpaper-be/internal/pkg/validate"
)

type (
	PracticeHandler interface {
		StartSession(ctx *fiber.Ctx) error
		NextQuestion(ctx *fiber.Ctx) error
		SubmitAnswer(ctx *fiber.Ctx) error
		CompleteSession(ctx *fiber.Ctx) error
		AbandonSession(ctx *fiber.Ctx) error
		GetSession(ctx *fiber.Ctx) error
		ListSessions(ctx *fiber.Ctx) error
	}

	practiceHandler struct {
		validator *validate.Validator
		logger    *logrus.Logger
		usecase   usecase.PracticeUsecase
	}
)

func NewPracticeHandler(validator *validate.Validator, logger *logrus.Logger, usecase usecase.PracticeUsecase) PracticeHandler {
	return &practiceHandler{
		validator: validator,
		logger:    logger,
		usecase:   usecase,
	}
}

func studentID(ctx *fiber.Ctx) uuid.UUID {
	id, _ := ctx.Locals("student_id").(uuid.UUID)
	return id
}

func sessionIDParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("session_id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid session_id")
	}
	return id, nil
}

// POST /api/practice/sessions
func (h *practiceHandler) StartSession(ctx *fiber.Ctx) error {
	var req entity.StartSessionRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.PRACTICE_START_FAILED, err, h.logger).Send(ctx)
	}

	session, err := h.usecase.StartSession(ctx.UserContext(), studentID(ctx), req)
	if err != nil {
		return response.NewFailed(domain.PRACTICE_START_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.PRACTICE_START_SUCCESS, session, nil).Send(ctx)
}

// GET /api/practice/sessions/:session_id/next
func (h *practiceHandler) NextQuestion(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return response.NewFailed(domain.PRACTICE_NEXT_QUESTION_FAILED, err, h.logger).Send(ctx)
	}

	question, err := h.usecase.NextQuestion(ctx.UserContext(), studentID(ctx), sessionID)
	if err != nil {
		return response.NewFailed(domain.PRACTICE_NEXT_QUESTION_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.PRACTICE_NEXT_QUESTION_SUCCESS, question, nil).Send(ctx)
}

// POST /api/practice/sessions/:session_id/answer
func (h *practiceHandler) SubmitAnswer(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return response.NewFailed(domain.PRACTICE_SUBMIT_ANSWER_FAILED, err, h.logger).Send(ctx)
	}

	var req entity.SubmitAnswerRequest
	if err := h.validator.ParseAndValidate(ctx, &req); err != nil {
		return response.NewFailed(domain.PRACTICE_SUBMIT_ANSWER_FAILED, err, h.logger).Send(ctx)
	}
	if req.Answer == "" && req.AnswerImageBase64 == "" {
		return response.NewFailed(domain.PRACTICE_SUBMIT_ANSWER_FAILED,
			fiber.NewError(fiber.StatusBadRequest, "either answer or answer_image_base64 is required"), h.logger).Send(ctx)
	}

	result, err := h.usecase.SubmitAnswer(ctx.UserContext(), studentID(ctx), sessionID, req)
	if err != nil {
		return response.NewFailed(domain.PRACTICE_SUBMIT_ANSWER_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.PRACTICE_SUBMIT_ANSWER_SUCCESS, result, nil).Send(ctx)
}

// POST /api/practice/sessions/:session_id/complete
func (h *practiceHandler) CompleteSession(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return response.NewFailed(domain.PRACTICE_COMPLETE_FAILED, err, h.logger).Send(ctx)
	}

	session, err := h.usecase.CompleteSession(ctx.UserContext(), studentID(ctx), sessionID)
	if err != nil {
		return response.NewFailed(domain.PRACTICE_COMPLETE_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.PRACTICE_COMPLETE_SUCCESS, session, nil).Send(ctx)
}

// POST /api/practice/sessions/:session_id/abandon
func (h *practiceHandler) AbandonSession(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return response.NewFailed(domain.PRACTICE_ABANDON_FAILED, err, h.logger).Send(ctx)
	}

	session, err := h.usecase.AbandonSession(ctx.UserContext(), studentID(ctx), sessionID)
	if err != nil {
		return response.NewFailed(domain.PRACTICE_ABANDON_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.PRACTICE_ABANDON_SUCCESS, session, nil).Send(ctx)
}

// GET /api/practice/sessions/:session_id
func (h *practiceHandler) GetSession(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return response.NewFailed(domain.PRACTICE_GET_SESSION_FAILED, err, h.logger).Send(ctx)
	}

	detail, err := h.usecase.GetSession(ctx.UserContext(), studentID(ctx), sessionID)
	if err != nil {
		return response.NewFailed(domain.PRACTICE_GET_SESSION_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.PRACTICE_GET_SESSION_SUCCESS, detail, nil).Send(ctx)
}

// GET /api/practice/sessions
func (h *practiceHandler) ListSessions(ctx *fiber.Ctx) error {
	sessions, err := h.usecase.ListSessions(ctx.UserContext(), studentID(ctx))
	if err != nil {
		return response.NewFailed(domain.PRACTICE_LIST_SESSIONS_FAILED, fiber.NewError(statusForError(err), err.Error()), h.logger).Send(ctx)
	}

	return response.NewSuccess(domain.PRACTICE_LIST_SESSIONS_SUCCESS, sessions, nil).Send(ctx)
}
