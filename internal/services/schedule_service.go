package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/events"
	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/validator"
)

// scheduleTopic is the broker topic for interview scheduling lifecycle events.
const scheduleTopic = "portal.schedules"

type scheduleService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewScheduleService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ScheduleService {
	return &scheduleService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

// Create registers a student's proposed interview slot. The course must be
// paid for before a request can be filed.
func (s *scheduleService) Create(ctx context.Context, req *CreateScheduleRequest, studentID uint) (*models.InterviewScheduleRequest, error) {
	s.logger.Info("Creating interview schedule request",
		"course_id", req.CourseID,
		"student_id", studentID)

	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, NewValidationError(errs)
	}

	if _, err := s.repo.InterviewCourse().GetByID(ctx, s.db, req.CourseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get interview course: %w", err)
	}

	paid, err := isPaid(ctx, s.repo, s.db, req.CourseID, models.SubjectInterview, studentID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, ErrSubjectNotUnlocked
	}

	request := &models.InterviewScheduleRequest{
		StudentID:    studentID,
		CourseID:     req.CourseID,
		ProposedDate: req.ProposedDate,
		ProposedTime: req.ProposedTime,
		Notes:        req.Notes,
		Status:       models.SchedulePending,
	}

	if err := s.repo.Schedule().Create(ctx, s.db, request); err != nil {
		return nil, fmt.Errorf("failed to create schedule request: %w", err)
	}

	s.publishScheduleEvent(ctx, events.TypeScheduleRequested, request, "")

	s.logger.Info("Interview schedule request created",
		"request_id", request.ID,
		"proposed_date", request.ProposedDate)

	return request, nil
}

// Get returns a single request. Students only see their own.
func (s *scheduleService) Get(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.InterviewScheduleRequest, error) {
	request, err := s.repo.Schedule().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule request: %w", err)
	}

	if role == models.RoleStudent && request.StudentID != userID {
		return nil, NewPermissionError(userID, "schedule_request", "read", "not the requesting student")
	}

	return request, nil
}

func (s *scheduleService) List(ctx context.Context, filters repositories.ScheduleFilters) (*ScheduleListResponse, error) {
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

// Approve moves a pending request to approved.
func (s *scheduleService) Approve(ctx context.Context, id uint, actorID uint) error {
	return s.transition(ctx, id, models.SchedulePending, models.ScheduleApproved, map[string]interface{}{
		"status": models.ScheduleApproved,
	}, actorID, "")
}

// Reject moves a pending request to rejected with a mandatory reason.
func (s *scheduleService) Reject(ctx context.Context, id uint, reason string, actorID uint) error {
	if errs := s.validator.Validate(&validator.ScheduleRejectRequest{Reason: reason}); errs.HasErrors() {
		return NewValidationError(errs)
	}
	return s.transition(ctx, id, models.SchedulePending, models.ScheduleRejected, map[string]interface{}{
		"status":           models.ScheduleRejected,
		"rejection_reason": reason,
	}, actorID, reason)
}

// Schedule pins an approved request to a concrete slot and interviewer.
func (s *scheduleService) Schedule(ctx context.Context, id uint, req *AssignScheduleRequest, actorID uint) error {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return NewValidationError(errs)
	}

	interviewer, err := s.repo.User().GetByID(ctx, s.db, req.InterviewerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get interviewer: %w", err)
	}
	if interviewer.Role != models.RoleInterviewer && interviewer.Role != models.RoleHR && interviewer.Role != models.RoleAdmin {
		return NewPermissionError(actorID, "schedule_request", "schedule",
			fmt.Sprintf("user %d cannot conduct interviews", req.InterviewerID))
	}

	return s.transition(ctx, id, models.ScheduleApproved, models.ScheduleScheduled, map[string]interface{}{
		"status":                  models.ScheduleScheduled,
		"scheduled_date":          req.ScheduledDate,
		"scheduled_time_slot":     req.ScheduledTimeSlot,
		"assigned_interviewer_id": req.InterviewerID,
	}, actorID, "")
}

// Complete marks a scheduled interview as held.
func (s *scheduleService) Complete(ctx context.Context, id uint, actorID uint) error {
	return s.transition(ctx, id, models.ScheduleScheduled, models.ScheduleCompleted, map[string]interface{}{
		"status": models.ScheduleCompleted,
	}, actorID, "")
}

// Cancel is available to the owning student while the request is pending,
// and to staff up until the interview is held.
func (s *scheduleService) Cancel(ctx context.Context, id uint, actorID uint, role models.UserRole) error {
	request, err := s.repo.Schedule().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("failed to get schedule request: %w", err)
	}

	if role == models.RoleStudent {
		if request.StudentID != actorID {
			return NewPermissionError(actorID, "schedule_request", "cancel", "not the requesting student")
		}
		if request.Status != models.SchedulePending {
			return ErrScheduleNotTransitable
		}
	}

	return s.transition(ctx, id, request.Status, models.ScheduleCancelled, map[string]interface{}{
		"status": models.ScheduleCancelled,
	}, actorID, "")
}

// transition applies a guarded status update. The update only lands when the
// row still carries the expected current status, so racing decisions on the
// same request resolve to exactly one winner.
func (s *scheduleService) transition(ctx context.Context, id uint, from, to models.ScheduleStatus, updates map[string]interface{}, actorID uint, reason string) error {
	if errs := s.validator.ValidateScheduleTransition(from, to); errs.HasErrors() {
		return ErrScheduleNotTransitable
	}

	rows, err := s.repo.Schedule().Transition(ctx, s.db, id, from, updates)
	if err != nil {
		return fmt.Errorf("failed to transition schedule request: %w", err)
	}
	if rows == 0 {
		// Either the id does not exist or another actor got there first.
		if _, err := s.repo.Schedule().GetByID(ctx, s.db, id); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrScheduleNotFound
			}
			return fmt.Errorf("failed to get schedule request: %w", err)
		}
		return NewConflictError("schedule_request",
			fmt.Sprintf("request %d is no longer %s", id, from))
	}

	s.logger.Info("Schedule request transitioned",
		"request_id", id,
		"from", from,
		"to", to,
		"actor_id", actorID)

	request, err := s.repo.Schedule().GetByID(ctx, s.db, id)
	if err == nil {
		s.publishScheduleEvent(ctx, events.TypeScheduleDecided, request, reason)
	}

	return nil
}

func (s *scheduleService) publishScheduleEvent(ctx context.Context, eventType string, request *models.InterviewScheduleRequest, reason string) {
	if s.eventPublisher == nil {
		return
	}
	event := events.NewEvent(eventType, &events.ScheduleEvent{
		RequestID: request.ID,
		StudentID: request.StudentID,
		CourseID:  request.CourseID,
		Status:    string(request.Status),
		Reason:    reason,
	})
	if err := s.eventPublisher.Publish(ctx, scheduleTopic, event); err != nil {
		s.logger.Error("Failed to publish schedule event",
			"error", err,
			"event_type", eventType,
			"request_id", request.ID)
	}
}
