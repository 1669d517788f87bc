package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/validator"
)

type examService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExamService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ExamService {
	return &examService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *examService) Create(ctx context.Context, req *CreateExamRequest, creatorID uint) (*models.Exam, error) {
	s.logger.Info("Creating exam", "title", req.Title, "creator_id", creatorID)

	if errs := s.validator.ValidateExamCreate(req); errs.HasErrors() {
		return nil, NewValidationError(errs)
	}

	questions, totalMarks, err := buildExamQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	exam := &models.Exam{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		TotalMarks:  totalMarks,
		Fee:         models.DefaultFee,
		CreatedBy:   creatorID,
		Questions:   questions,
	}
	if req.Fee != nil {
		exam.Fee = *req.Fee
	}

	if err := s.repo.Exam().Create(ctx, s.db, exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info("Exam created", "exam_id", exam.ID)
	return exam, nil
}

func (s *examService) Get(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}

// GetDetail returns the exam with questions. Staff see the answer key;
// students must have paid and get the key stripped.
func (s *examService) GetDetail(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	if role == models.RoleAdmin || role == models.RoleHR {
		return exam, nil
	}

	paid, err := isPaid(ctx, s.repo, s.db, id, models.SubjectExam, userID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, ErrSubjectNotUnlocked
	}

	for i := range exam.Questions {
		exam.Questions[i].CorrectOption = models.HiddenAnswer
	}
	return exam, nil
}

func (s *examService) Update(ctx context.Context, id uint, req *UpdateExamRequest, userID uint) (*models.Exam, error) {
	s.logger.Info("Updating exam", "exam_id", id, "user_id", userID)

	if errs := s.validator.ValidateExamUpdate(req); errs.HasErrors() {
		return nil, NewValidationError(errs)
	}

	exam, err := s.repo.Exam().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = req.Description
	}
	if req.Duration != nil {
		exam.Duration = *req.Duration
	}
	if req.Fee != nil {
		exam.Fee = *req.Fee
	}

	if req.Questions != nil {
		questions, totalMarks, err := buildExamQuestions(req.Questions)
		if err != nil {
			return nil, err
		}
		exam.TotalMarks = totalMarks
		if err := s.repo.Exam().ReplaceQuestions(ctx, s.db, id, questions); err != nil {
			return nil, fmt.Errorf("failed to replace questions: %w", err)
		}
	}

	if err := s.repo.Exam().Update(ctx, s.db, exam); err != nil {
		return nil, fmt.Errorf("failed to update exam: %w", err)
	}

	return exam, nil
}

func (s *examService) Delete(ctx context.Context, id uint, userID uint) error {
	s.logger.Info("Deleting exam", "exam_id", id, "user_id", userID)

	if _, err := s.repo.Exam().GetByID(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to get exam: %w", err)
	}

	if err := s.repo.Exam().Delete(ctx, s.db, id); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}
	return nil
}

func (s *examService) List(ctx context.Context, filters repositories.CatalogFilters) (*ExamListResponse, error) {
	exams, total, err := s.repo.Exam().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}

	page, size := pageFromOffset(filters.Limit, filters.Offset)
	return &ExamListResponse{
		Exams: exams,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

// buildExamQuestions converts request questions into rows and sums marks.
func buildExamQuestions(reqs []validator.QuestionCreateRequest) ([]models.ExamQuestion, int, error) {
	questions := make([]models.ExamQuestion, 0, len(reqs))
	totalMarks := 0

	for i, q := range reqs {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode options: %w", err)
		}

		questions = append(questions, models.ExamQuestion{
			Text:          q.Text,
			Options:       options,
			CorrectOption: q.CorrectOption,
			Marks:         q.Marks,
			Position:      i,
		})
		totalMarks += q.Marks
	}

	return questions, totalMarks, nil
}

// isPaid checks the derived unlock state straight off the ledger.
func isPaid(ctx context.Context, repo repositories.Repository, db *gorm.DB, subjectID uint, kind models.SubjectKind, payerID uint) (bool, error) {
	entry, err := repo.Payment().GetLatestByPair(ctx, db, subjectID, kind, payerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return entry.Status == models.PaymentCompleted, nil
}
