package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	httpEntity "github.com/pastpaper/pastpaper-be/internal/delivery/http/entity"
	"github.com/pastpaper/pastpaper-be/internal/pkg/apperr"
	"github.com/pastpaper/pastpaper-be/internal/pkg/rag"
)

// RagUsecase exposes the retrieval backend to the API layer, with admission
// control applied per caller before any backend call is made.
type RagUsecase interface {
	Query(ctx context.Context, bucketKey string, req httpEntity.RagQueryRequest) (*httpEntity.RagQueryResponse, error)
	Retrieve(ctx context.Context, bucketKey string, req httpEntity.RagRetrieveRequest) (*httpEntity.RagRetrieveResponse, error)
}

type RagConfig struct {
	Rag     *rag.Client
	Limiter *rag.Limiter
	Logger  *logrus.Logger
}

type ragUsecase struct {
	cfg RagConfig
}

func NewRagUsecase(cfg RagConfig) RagUsecase {
	return &ragUsecase{cfg: cfg}
}

func (u *ragUsecase) Query(ctx context.Context, bucketKey string, req httpEntity.RagQueryRequest) (*httpEntity.RagQueryResponse, error) {
	if !u.cfg.Rag.Available() {
		return nil, apperr.ErrBackendUnavailable
	}
	if !u.cfg.Limiter.Allow(ctx, bucketKey) {
		return nil, apperr.ErrRateLimited
	}

	result, err := u.cfg.Rag.Query(ctx, req.Question, req.Collection, req.TopK, nil)
	if err != nil {
		return nil, err
	}

	return &httpEntity.RagQueryResponse{Answer: result.Answer, Sources: sourcesFromChunks(nil, result.Sources)}, nil
}

func (u *ragUsecase) Retrieve(ctx context.Context, bucketKey string, req httpEntity.RagRetrieveRequest) (*httpEntity.RagRetrieveResponse, error) {
	if !u.cfg.Rag.Available() {
		return nil, apperr.ErrBackendUnavailable
	}
	if !u.cfg.Limiter.Allow(ctx, bucketKey) {
		return nil, apperr.ErrRateLimited
	}

	result, err := u.cfg.Rag.Retrieve(ctx, req.Query, req.Collection, req.TopK)
	if err != nil {
		return nil, err
	}

	chunks := make([]httpEntity.RagChunkRead, 0, len(result.Results))
	for _, chunk := range result.Results {
		chunks = append(chunks, httpEntity.RagChunkRead{
			Content:  chunk.Content,
			Score:    chunk.Score,
			FileName: chunk.Metadata.FileName,
			Page:     chunk.Metadata.PageNumber,
		})
	}
	return &httpEntity.RagRetrieveResponse{Results: chunks, Total: result.Total}, nil
}
