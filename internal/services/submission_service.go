package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/events"
	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/validator"
)

// submissionTopic is the broker topic for completed exams and interviews.
const submissionTopic = "portal.submissions"

// EvaluationScorer produces an evaluation payload for a completed
// interview attempt. The real implementation is out of scope; the portal
// ships a deterministic stub.
type EvaluationScorer interface {
	Evaluate(ctx context.Context, course *models.InterviewCourse, responses map[string]string) (map[string]interface{}, error)
}

// StubEvaluationScorer grades every response by coverage alone: answered
// questions score, unanswered ones do not.
type StubEvaluationScorer struct{}

func (StubEvaluationScorer) Evaluate(_ context.Context, course *models.InterviewCourse, responses map[string]string) (map[string]interface{}, error) {
	answered := 0
	for _, r := range responses {
		if r != "" {
			answered++
		}
	}

	total := len(course.Questions)
	if total == 0 {
		total = len(responses)
	}

	coverage := 0.0
	if total > 0 {
		coverage = float64(answered) / float64(total) * 100
	}

	return map[string]interface{}{
		"scorer":             "stub",
		"questions_total":    total,
		"questions_answered": answered,
		"coverage_percent":   coverage,
		"verdict":            "pending_human_review",
	}, nil
}

type submissionService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	scorer         EvaluationScorer
	eventPublisher events.EventPublisher
}

func NewSubmissionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, scorer EvaluationScorer, publisher events.EventPublisher) SubmissionService {
	if scorer == nil {
		scorer = StubEvaluationScorer{}
	}
	return &submissionService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		scorer:         scorer,
		eventPublisher: publisher,
	}
}

// SubmitExam scores an answer sheet against the exam's question list and
// stores the submission exactly once.
func (s *submissionService) SubmitExam(ctx context.Context, examID uint, userID uint, req *SubmitExamRequest) (*SubmissionResult, error) {
	s.logger.Info("Scoring exam submission",
		"exam_id", examID,
		"user_id", userID,
		"answers", len(req.Answers))

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError(errs)
	}

	paid, err := isPaid(ctx, s.repo, s.db, examID, models.SubjectExam, userID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, ErrSubjectNotUnlocked
	}

	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, s.db, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	score, totalMarks := scoreAnswers(exam.Questions, req.Answers)

	percentage := 0.0
	if totalMarks > 0 {
		percentage = float64(score) / float64(totalMarks) * 100
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	submission := &models.Submission{
		UserID:      userID,
		ExamID:      examID,
		Answers:     answersJSON,
		Score:       score,
		TotalMarks:  totalMarks,
		Percentage:  percentage,
		SubmittedAt: time.Now(),
	}

	if err := s.repo.Submission().Create(ctx, s.db, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.publishSubmissionEvent(ctx, events.TypeExamSubmitted, &events.SubmissionEvent{
		UserID:     userID,
		SubjectID:  examID,
		Kind:       string(models.SubjectExam),
		Score:      score,
		TotalMarks: totalMarks,
		Percentage: percentage,
	})

	s.logger.Info("Exam submission scored",
		"submission_id", submission.ID,
		"score", score,
		"total_marks", totalMarks)

	return &SubmissionResult{
		SubmissionID: submission.ID,
		Score:        score,
		TotalMarks:   totalMarks,
		Percentage:   percentage,
	}, nil
}

// SubmitInterview runs the evaluation scorer over a completed attempt and
// stores the result.
func (s *submissionService) SubmitInterview(ctx context.Context, courseID uint, userID uint, req *SubmitInterviewRequest) (*models.InterviewAttempt, error) {
	s.logger.Info("Recording interview attempt",
		"course_id", courseID,
		"user_id", userID)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError(errs)
	}

	paid, err := isPaid(ctx, s.repo, s.db, courseID, models.SubjectInterview, userID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, ErrSubjectNotUnlocked
	}

	course, err := s.repo.InterviewCourse().GetByIDWithQuestions(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get interview course: %w", err)
	}

	evaluation, err := s.scorer.Evaluate(ctx, course, req.Responses)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate attempt: %w", err)
	}

	evalJSON, err := json.Marshal(evaluation)
	if err != nil {
		return nil, fmt.Errorf("failed to encode evaluation: %w", err)
	}

	attempt := &models.InterviewAttempt{
		UserID:      userID,
		CourseID:    courseID,
		Evaluation:  evalJSON,
		CompletedAt: time.Now(),
	}

	if err := s.repo.Submission().CreateInterviewAttempt(ctx, s.db, attempt); err != nil {
		return nil, fmt.Errorf("failed to create interview attempt: %w", err)
	}

	s.publishSubmissionEvent(ctx, events.TypeInterviewCompleted, &events.SubmissionEvent{
		UserID:    userID,
		SubjectID: courseID,
		Kind:      string(models.SubjectInterview),
	})

	return attempt, nil
}

func (s *submissionService) ListByUser(ctx context.Context, userID uint, filters repositories.SubmissionFilters) (*SubmissionListResponse, error) {
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

func (s *submissionService) ListInterviewAttempts(ctx context.Context, userID uint) ([]*models.InterviewAttempt, error) {
	attempts, err := s.repo.Submission().ListInterviewAttempts(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interview attempts: %w", err)
	}
	return attempts, nil
}

func (s *submissionService) publishSubmissionEvent(ctx context.Context, eventType string, payload *events.SubmissionEvent) {
	if s.eventPublisher == nil {
		return
	}
	event := events.NewEvent(eventType, payload)
	if err := s.eventPublisher.Publish(ctx, submissionTopic, event); err != nil {
		s.logger.Error("Failed to publish submission event",
			"error", err,
			"event_type", eventType)
	}
}

// scoreAnswers sums marks for answers matching the answer key. Unknown
// question ids and missing answers contribute zero; no partial credit,
// no negative marking.
func scoreAnswers(questions []models.ExamQuestion, answers map[string]int) (int, int) {
	score := 0
	totalMarks := 0

	for _, q := range questions {
		totalMarks += q.Marks

		selected, ok := answers[strconv.FormatUint(uint64(q.ID), 10)]
		if ok && selected == q.CorrectOption {
			score += q.Marks
		}
	}

	return score, totalMarks
}
