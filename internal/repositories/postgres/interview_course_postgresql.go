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

type InterviewCoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewInterviewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.InterviewCourseRepository {
	return &InterviewCoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *InterviewCoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *InterviewCoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.InterviewCourse) error {
	db := c.getDB(tx)
	return db.WithContext(ctx).Create(course).Error
}

func (c *InterviewCoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewCourse, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var course models.InterviewCourse

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.MediumCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.InterviewCourse
		if err := db.WithContext(ctx).First(&dbCourse, id).Error; err != nil {
			return nil, err
		}
		return &dbCourse, nil
	})

	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *InterviewCoursePostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewCourse, error) {
	db := c.getDB(tx)
	var course models.InterviewCourse
	err := db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	course.QuestionsCount = len(course.Questions)
	return &course, nil
}

func (c *InterviewCoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.InterviewCourse) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Omit("Questions").Save(course).Error; err != nil {
		return err
	}
	c.cacheManager.InvalidateCourse(ctx, course.ID)
	return nil
}

func (c *InterviewCoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).
		Where("course_id = ?", id).
		Delete(&models.InterviewQuestion{}).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(&models.InterviewCourse{}, id).Error; err != nil {
		return err
	}
	c.cacheManager.InvalidateCourse(ctx, id)
	return nil
}

func (c *InterviewCoursePostgreSQL) ReplaceQuestions(ctx context.Context, tx *gorm.DB, courseID uint, questions []models.InterviewQuestion) error {
	db := c.getDB(tx)

	if err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&models.InterviewQuestion{}).Error; err != nil {
		return err
	}

	for i := range questions {
		questions[i].ID = 0
		questions[i].CourseID = courseID
		questions[i].Position = i
	}
	if len(questions) > 0 {
		if err := db.WithContext(ctx).Create(&questions).Error; err != nil {
			return err
		}
	}

	c.cacheManager.InvalidateCourse(ctx, courseID)
	return nil
}

func (c *InterviewCoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CatalogFilters) ([]*models.InterviewCourse, int64, error) {
	db := c.getDB(tx)
	var courses []*models.InterviewCourse
	var total int64

	query := db.WithContext(ctx).Model(&models.InterviewCourse{})
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filters.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	for _, course := range courses {
		var count int64
		if err := db.WithContext(ctx).
			Model(&models.InterviewQuestion{}).
			Where("course_id = ?", course.ID).
			Count(&count).Error; err != nil {
			return nil, 0, err
		}
		course.QuestionsCount = int(count)
	}

	return courses, total, nil
}
