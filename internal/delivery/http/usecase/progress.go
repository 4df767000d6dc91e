package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	httpEntity "github.com/pastpaper/pastpaper-be/internal/delivery/http/entity"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/repository"
	"github.com/pastpaper/pastpaper-be/internal/pkg/mapper"
)

type ProgressUsecase interface {
	GetProgress(ctx context.Context, studentID uuid.UUID) ([]httpEntity.ProgressRead, error)
}

type ProgressConfig struct {
	Repository repository.ProgressRepository
	Logger     *logrus.Logger
}

type progressUsecase struct {
	cfg ProgressConfig
}

func NewProgressUsecase(cfg ProgressConfig) ProgressUsecase {
	return &progressUsecase{cfg: cfg}
}

func (u *progressUsecase) GetProgress(ctx context.Context, studentID uuid.UUID) ([]httpEntity.ProgressRead, error) {
	rows, err := u.cfg.Repository.FindByStudentID(nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	reads := make([]httpEntity.ProgressRead, 0, len(rows))
	for i := range rows {
		reads = append(reads, mapper.ConvertToProgressRead(&rows[i]))
	}
	return reads, nil
}
