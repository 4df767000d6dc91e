package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpEntity "github.com/pastpaper/pastpaper-be/internal/delivery/http/entity"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/repository"
	internalEntity "github.com/pastpaper/pastpaper-be/internal/entity"
	"github.com/pastpaper/pastpaper-be/internal/pkg/apperr"
	"github.com/pastpaper/pastpaper-be/internal/pkg/mapper"
	"github.com/pastpaper/pastpaper-be/internal/pkg/rag"
)

const chatHistoryWindow = 10

type ChatUsecase interface {
	CreateSession(ctx context.Context, userID uuid.UUID, req httpEntity.CreateChatSessionRequest) (*httpEntity.ChatSessionRead, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]httpEntity.ChatSessionRead, error)
	SendMessage(ctx context.Context, userID, sessionID uuid.UUID, message string) (*httpEntity.ChatResponse, error)
	GetHistory(ctx context.Context, userID, sessionID uuid.UUID) ([]httpEntity.ChatHistoryItem, error)
	DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error
}

type ChatConfig struct {
	Repository repository.ChatRepository
	Rag        *rag.Client
	Limiter    *rag.Limiter
	Logger     *logrus.Logger
	TopK       int
}

type chatUsecase struct {
	cfg ChatConfig
}

func NewChatUsecase(cfg ChatConfig) ChatUsecase {
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	return &chatUsecase{cfg: cfg}
}

func (u *chatUsecase) CreateSession(ctx context.Context, userID uuid.UUID, req httpEntity.CreateChatSessionRequest) (*httpEntity.ChatSessionRead, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "New Chat"
	}
	session := &internalEntity.ChatSession{
		UserID:     userID,
		Collection: strings.TrimSpace(req.Collection),
		Title:      title,
	}
	if err := u.cfg.Repository.CreateSession(nil, session); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	read := mapper.ConvertToChatSessionRead(session)
	return &read, nil
}

func (u *chatUsecase) ListSessions(ctx context.Context, userID uuid.UUID) ([]httpEntity.ChatSessionRead, error) {
	sessions, err := u.cfg.Repository.FindSessionsByUserID(nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	reads := make([]httpEntity.ChatSessionRead, 0, len(sessions))
	for i := range sessions {
		reads = append(reads, mapper.ConvertToChatSessionRead(&sessions[i]))
	}
	return reads, nil
}

func (u *chatUsecase) SendMessage(ctx context.Context, userID, sessionID uuid.UUID, message string) (*httpEntity.ChatResponse, error) {
	session, err := u.loadOwnedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !u.cfg.Rag.Available() {
		return nil, apperr.ErrBackendUnavailable
	}
	if !u.cfg.Limiter.Allow(ctx, rag.UserBucket(userID.String())) {
		return nil, apperr.ErrRateLimited
	}

	stored, err := u.cfg.Repository.FindMessagesBySessionID(nil, sessionID, 0)
	if err != nil {
		stored = nil
	}
	if len(stored) > chatHistoryWindow {
		stored = stored[len(stored)-chatHistoryWindow:]
	}
	history := make([]rag.Message, 0, len(stored))
	for _, msg := range stored {
		history = append(history, rag.Message{Role: msg.Role, Content: msg.Content})
	}

	result, err := u.cfg.Rag.Query(ctx, message, session.Collection, u.cfg.TopK, history)
	if err != nil {
		return nil, err
	}

	sources := sourcesFromChunks(nil, result.Sources)

	userMsg := &internalEntity.ChatMessage{SessionID: sessionID, Role: "user", Content: message}
	if err := u.cfg.Repository.CreateMessage(nil, userMsg); err != nil {
		u.cfg.Logger.Warnf("failed to save user message for chat %s: %v", sessionID, err)
	}
	assistantMsg := &internalEntity.ChatMessage{
		SessionID:   sessionID,
		Role:        "assistant",
		Content:     result.Answer,
		SourcesJSON: mapper.EncodeSourceReferences(sources),
	}
	if err := u.cfg.Repository.CreateMessage(nil, assistantMsg); err != nil {
		u.cfg.Logger.Warnf("failed to save assistant message for chat %s: %v", sessionID, err)
	}

	// First message names the session.
	if len(stored) == 0 && session.Title == "New Chat" {
		session.Title = truncateTitle(message, 60)
		if err := u.cfg.Repository.UpdateSession(nil, session); err != nil {
			u.cfg.Logger.Warnf("failed to rename chat %s: %v", sessionID, err)
		}
	}

	return &httpEntity.ChatResponse{
		SessionID:         sessionID.String(),
		Answer:            result.Answer,
		Sources:           sources,
		CondensedQuestion: result.CondensedQuestion,
	}, nil
}

func (u *chatUsecase) GetHistory(ctx context.Context, userID, sessionID uuid.UUID) ([]httpEntity.ChatHistoryItem, error) {
	if _, err := u.loadOwnedSession(userID, sessionID); err != nil {
		return nil, err
	}
	messages, err := u.cfg.Repository.FindMessagesBySessionID(nil, sessionID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	history := make([]httpEntity.ChatHistoryItem, 0, len(messages))
	for i := range messages {
		history = append(history, mapper.ConvertToChatHistoryItem(&messages[i]))
	}
	return history, nil
}

func (u *chatUsecase) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	if _, err := u.loadOwnedSession(userID, sessionID); err != nil {
		return err
	}
	return u.cfg.Repository.DeleteSession(nil, sessionID)
}

func (u *chatUsecase) loadOwnedSession(userID, sessionID uuid.UUID) (*internalEntity.ChatSession, error) {
	session, err := u.cfg.Repository.FindSessionByID(nil, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: chat session %s", apperr.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load chat session: %w", err)
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("%w: chat session %s", apperr.ErrNotFound, sessionID)
	}
	return session, nil
}

func truncateTitle(message string, max int) string {
	message = strings.TrimSpace(message)
	if len(message) <= max {
		return message
	}
	return message[:max] + "..."
}
