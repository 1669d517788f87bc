package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/cache"
	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
)

type ExamPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewExamPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ExamRepository {
	return &ExamPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (e *ExamPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

func (e *ExamPostgreSQL) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	db := e.getDB(tx)
	return db.WithContext(ctx).Create(exam).Error
}

func (e *ExamPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	db := e.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var exam models.Exam

	err := e.cacheManager.Exam.CacheOrExecute(ctx, cacheKey, &exam, cache.MediumCacheConfig.TTL, func() (interface{}, error) {
		var dbExam models.Exam
		if err := db.WithContext(ctx).First(&dbExam, id).Error; err != nil {
			return nil, err
		}
		return &dbExam, nil
	})

	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	db := e.getDB(tx)
	var exam models.Exam
	err := db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&exam, id).Error
	if err != nil {
		return nil, err
	}
	exam.QuestionsCount = len(exam.Questions)
	return &exam, nil
}

func (e *ExamPostgreSQL) Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	db := e.getDB(tx)
	if err := db.WithContext(ctx).Omit("Questions").Save(exam).Error; err != nil {
		return err
	}
	e.cacheManager.InvalidateExam(ctx, exam.ID)
	return nil
}

func (e *ExamPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := e.getDB(tx)
	if err := db.WithContext(ctx).
		Where("exam_id = ?", id).
		Delete(&models.ExamQuestion{}).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(&models.Exam{}, id).Error; err != nil {
		return err
	}
	e.cacheManager.InvalidateExam(ctx, id)
	return nil
}

// ReplaceQuestions swaps the full question set of an exam. Positions are
// assigned from slice order.
func (e *ExamPostgreSQL) ReplaceQuestions(ctx context.Context, tx *gorm.DB, examID uint, questions []models.ExamQuestion) error {
	db := e.getDB(tx)

	if err := db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Delete(&models.ExamQuestion{}).Error; err != nil {
		return err
	}

	for i := range questions {
		questions[i].ID = 0
		questions[i].ExamID = examID
		questions[i].Position = i
	}
	if len(questions) > 0 {
		if err := db.WithContext(ctx).Create(&questions).Error; err != nil {
			return err
		}
	}

	e.cacheManager.InvalidateExam(ctx, examID)
	return nil
}

func (e *ExamPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CatalogFilters) ([]*models.Exam, int64, error) {
	db := e.getDB(tx)
	var exams []*models.Exam
	var total int64

	query := db.WithContext(ctx).Model(&models.Exam{})
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filters.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = e.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&exams).Error; err != nil {
		return nil, 0, err
	}

	for _, exam := range exams {
		var count int64
		if err := db.WithContext(ctx).
			Model(&models.ExamQuestion{}).
			Where("exam_id = ?", exam.ID).
			Count(&count).Error; err != nil {
			return nil, 0, err
		}
		exam.QuestionsCount = int(count)
	}

	return exams, total, nil
}
