package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
)

type studentService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewStudentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) StudentService {
	return &studentService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// Unlocks walks the full catalog and resolves each item's payment state for
// the student from the latest ledger entry.
func (s *studentService) Unlocks(ctx context.Context, userID uint) ([]*UnlockItem, error) {
	exams, _, err := s.repo.Exam().List(ctx, s.db, repositories.CatalogFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}

	courses, _, err := s.repo.InterviewCourse().List(ctx, s.db, repositories.CatalogFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list interview courses: %w", err)
	}

	items := make([]*UnlockItem, 0, len(exams)+len(courses))

	for _, exam := range exams {
		item, err := s.unlockItem(ctx, exam.ID, models.SubjectExam, exam.Title, exam.Fee, userID)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	for _, course := range courses {
		item, err := s.unlockItem(ctx, course.ID, models.SubjectInterview, course.Title, course.Fee, userID)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *studentService) unlockItem(ctx context.Context, subjectID uint, kind models.SubjectKind, title string, fee int, userID uint) (*UnlockItem, error) {
	item := &UnlockItem{
		SubjectID:   subjectID,
		SubjectKind: kind,
		Title:       title,
		Fee:         fee,
		Status:      models.PaymentNotPaid,
	}

	entry, err := s.repo.Payment().GetLatestByPair(ctx, s.db, subjectID, kind, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return item, nil
		}
		return nil, fmt.Errorf("failed to get payment entry: %w", err)
	}

	item.Status = entry.Status
	item.Paid = entry.Status == models.PaymentCompleted
	return item, nil
}

func (s *studentService) MySubmissions(ctx context.Context, userID uint, filters repositories.SubmissionFilters) (*SubmissionListResponse, error) {
	filters.UserID = &userID

	submissions, total, err := s.repo.Submission().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	page, size := pageFromOffset(filters.Limit, filters.Offset)
	return &SubmissionListResponse{
		Submissions: submissions,
		Total:       total,
		Page:        page,
		Size:        size,
	}, nil
}

func (s *studentService) MyScheduleRequests(ctx context.Context, userID uint, filters repositories.ScheduleFilters) (*ScheduleListResponse, error) {
	filters.StudentID = &userID

	requests, total, err := s.repo.Schedule().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule requests: %w", err)
	}

	page, size := pageFromOffset(filters.Limit, filters.Offset)
	return &ScheduleListResponse{
		Requests: requests,
		Total:    total,
		Page:     page,
		Size:     size,
	}, nil
}
