package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/cache"
	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
)

type statsService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	cache  *cache.CacheHelper
}

func NewStatsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, redisClient *redis.Client) StatsService {
	return &statsService{
		repo:   repo,
		db:     db,
		logger: logger,
		cache:  cache.NewCacheHelper(redisClient, cache.StatsCacheConfig.Prefix),
	}
}

// PortalStats aggregates the admin dashboard counters. The result is cached
// briefly since every counter is a full table scan by status.
func (s *statsService) PortalStats(ctx context.Context) (*repositories.PortalStats, error) {
	var stats repositories.PortalStats

	err := s.cache.CacheOrExecute(ctx, "portal", &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		computed, err := s.computeStats(ctx)
		if err != nil {
			return nil, err
		}
		return computed, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *statsService) computeStats(ctx context.Context) (*repositories.PortalStats, error) {
	stats := &repositories.PortalStats{}

	var err error
	if stats.PendingVerifications, err = s.repo.Payment().CountByStatus(ctx, s.db, models.PaymentPendingVerification); err != nil {
		return nil, fmt.Errorf("failed to count pending verifications: %w", err)
	}
	if stats.CompletedPayments, err = s.repo.Payment().CountByStatus(ctx, s.db, models.PaymentCompleted); err != nil {
		return nil, fmt.Errorf("failed to count completed payments: %w", err)
	}
	if stats.RejectedPayments, err = s.repo.Payment().CountByStatus(ctx, s.db, models.PaymentRejected); err != nil {
		return nil, fmt.Errorf("failed to count rejected payments: %w", err)
	}

	studentRole := models.RoleStudent
	_, students, err := s.repo.User().List(ctx, s.db, repositories.UserFilters{Role: &studentRole, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	stats.RegisteredStudents = students

	if stats.TotalSubmissions, err = s.repo.Submission().Count(ctx, s.db); err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	if stats.PendingSchedules, err = s.repo.Schedule().CountByStatus(ctx, s.db, models.SchedulePending); err != nil {
		return nil, fmt.Errorf("failed to count pending schedules: %w", err)
	}

	return stats, nil
}
