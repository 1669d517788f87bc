package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
)

type SchedulePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSchedulePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ScheduleRepository {
	return &SchedulePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (s *SchedulePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SchedulePostgreSQL) Create(ctx context.Context, tx *gorm.DB, req *models.InterviewScheduleRequest) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Create(req).Error
}

func (s *SchedulePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewScheduleRequest, error) {
	db := s.getDB(tx)
	var req models.InterviewScheduleRequest
	err := db.WithContext(ctx).
		Preload("Student").
		Preload("Course").
		Preload("Interviewer").
		First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *SchedulePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ScheduleFilters) ([]*models.InterviewScheduleRequest, int64, error) {
	db := s.getDB(tx)
	var requests []*models.InterviewScheduleRequest
	var total int64

	query := db.WithContext(ctx).Model(&models.InterviewScheduleRequest{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.InterviewerID != nil {
		query = query.Where("assigned_interviewer_id = ?", *filters.InterviewerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	query = query.Preload("Student").Preload("Course").Preload("Interviewer")

	if err := query.Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Transition applies updates only when the row still holds the expected
// prior status, so two admins deciding the same request cannot both win.
func (s *SchedulePostgreSQL) Transition(ctx context.Context, tx *gorm.DB, id uint, from models.ScheduleStatus, updates map[string]interface{}) (int64, error) {
	db := s.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.InterviewScheduleRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (s *SchedulePostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB, status models.ScheduleStatus) (int64, error) {
	db := s.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.InterviewScheduleRequest{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
