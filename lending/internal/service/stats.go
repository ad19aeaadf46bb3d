package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookhive/lending-service/lending/internal/model"
	"github.com/bookhive/lending-service/lending/internal/repository"
	"github.com/bookhive/lending-service/pkg/kafka"
)

type StatsService struct {
	log  *zap.Logger
	repo repository.Stats
}

func NewStatsService(repo repository.Stats, log *zap.Logger) *StatsService {
	return &StatsService{
		log:  log,
		repo: repo,
	}
}

// Record used by the kafka consumer.
func (s *StatsService) Record(ctx context.Context, event kafka.LendingEvent) error {
	return s.repo.RecordEvent(ctx, event)
}

// GetStats aggregates borrow and return counts per user.
func (s *StatsService) GetStats(ctx context.Context) (model.StatsInfo, error) {
	return s.repo.GetStats(ctx)
}
