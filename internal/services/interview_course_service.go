package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/validator"
)

type interviewCourseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewInterviewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) InterviewCourseService {
	return &interviewCourseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *interviewCourseService) Create(ctx context.Context, req *CreateCourseRequest, creatorID uint) (*models.InterviewCourse, error) {
	s.logger.Info("Creating interview course", "title", req.Title, "creator_id", creatorID)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError(errs)
	}

	course := &models.InterviewCourse{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Fee:         models.DefaultFee,
		CreatedBy:   creatorID,
		Questions:   buildInterviewQuestions(req.Questions),
	}
	if req.Fee != nil {
		course.Fee = *req.Fee
	}

	if err := s.repo.InterviewCourse().Create(ctx, s.db, course); err != nil {
		return nil, fmt.Errorf("failed to create interview course: %w", err)
	}

	s.logger.Info("Interview course created", "course_id", course.ID)
	return course, nil
}

func (s *interviewCourseService) Get(ctx context.Context, id uint) (*models.InterviewCourse, error) {
	course, err := s.repo.InterviewCourse().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get interview course: %w", err)
	}
	return course, nil
}

// GetDetail returns the course with questions. Interview questions carry
// no answer key, but the question list itself is paid content.
func (s *interviewCourseService) GetDetail(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.InterviewCourse, error) {
	course, err := s.repo.InterviewCourse().GetByIDWithQuestions(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get interview course: %w", err)
	}

	if role == models.RoleAdmin || role == models.RoleHR || role == models.RoleInterviewer {
		return course, nil
	}

	paid, err := isPaid(ctx, s.repo, s.db, id, models.SubjectInterview, userID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, ErrSubjectNotUnlocked
	}

	return course, nil
}

func (s *interviewCourseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest, userID uint) (*models.InterviewCourse, error) {
	s.logger.Info("Updating interview course", "course_id", id, "user_id", userID)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError(errs)
	}

	course, err := s.repo.InterviewCourse().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get interview course: %w", err)
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.Fee != nil {
		course.Fee = *req.Fee
	}

	if req.Questions != nil {
		if err := s.repo.InterviewCourse().ReplaceQuestions(ctx, s.db, id, buildInterviewQuestions(req.Questions)); err != nil {
			return nil, fmt.Errorf("failed to replace questions: %w", err)
		}
	}

	if err := s.repo.InterviewCourse().Update(ctx, s.db, course); err != nil {
		return nil, fmt.Errorf("failed to update interview course: %w", err)
	}

	return course, nil
}

func (s *interviewCourseService) Delete(ctx context.Context, id uint, userID uint) error {
	s.logger.Info("Deleting interview course", "course_id", id, "user_id", userID)

	if _, err := s.repo.InterviewCourse().GetByID(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get interview course: %w", err)
	}

	if err := s.repo.InterviewCourse().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete interview course: %w", err)
	}
	return nil
}

func (s *interviewCourseService) List(ctx context.Context, filters repositories.CatalogFilters) (*CourseListResponse, error) {
	courses, total, err := s.repo.InterviewCourse().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list interview courses: %w", err)
	}

	page, size := pageFromOffset(filters.Limit, filters.Offset)
	return &CourseListResponse{
		Courses: courses,
		Total:   total,
		Page:    page,
		Size:    size,
	}, nil
}

func buildInterviewQuestions(reqs []validator.InterviewQuestionCreateRequest) []models.InterviewQuestion {
	questions := make([]models.InterviewQuestion, 0, len(reqs))
	for i, q := range reqs {
		questions = append(questions, models.InterviewQuestion{
			Text:     q.Text,
			Position: i,
		})
	}
	return questions
}
