package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/AssessHub-IN/portal-service/internal/events"
	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/validator"
)

func newTestScheduleService(repo *mockRepository, publisher events.EventPublisher) *scheduleService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return &scheduleService{
		repo:           repo,
		db:             nil,
		logger:         logger,
		validator:      validator.New(),
		eventPublisher: publisher,
	}
}

func seedScheduleFixtures(repo *mockRepository) {
	repo.users.add(&models.User{ID: 1, Username: "asha", Email: "asha@example.com", Role: models.RoleStudent})
	repo.users.add(&models.User{ID: 2, Username: "ravi", Email: "ravi@example.com", Role: models.RoleInterviewer})
	repo.users.add(&models.User{ID: 3, Username: "meera", Email: "meera@example.com", Role: models.RoleHR})
	repo.courses.add(&models.InterviewCourse{ID: 20, Title: "System Design", Duration: 45, Fee: 300, CreatedBy: 99})
}

func seedScheduleRequest(repo *mockRepository, status models.ScheduleStatus) *models.InterviewScheduleRequest {
	return repo.schedules.add(&models.InterviewScheduleRequest{
		StudentID:    1,
		CourseID:     20,
		ProposedDate: "2026-09-15",
		ProposedTime: "10:00",
		Status:       status,
	})
}

func TestScheduleService_Create(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	t.Run("paid course accepts a request", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		markPaid(repo, 20, models.SubjectInterview, 1)
		publisher := events.NewMockEventPublisher(logger)
		service := newTestScheduleService(repo, publisher)

		request, err := service.Create(ctx, &CreateScheduleRequest{
			CourseID:     20,
			ProposedDate: "2026-09-15",
			ProposedTime: "10:00",
		}, 1)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if request.Status != models.SchedulePending {
			t.Errorf("New request should be pending, got %s", request.Status)
		}
		if request.StudentID != 1 {
			t.Errorf("Request should belong to the caller, got %d", request.StudentID)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeScheduleRequested {
			t.Fatalf("Expected one %s event, got %v", events.TypeScheduleRequested, published)
		}
	})

	t.Run("unpaid course is locked", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))

		_, err := service.Create(ctx, &CreateScheduleRequest{
			CourseID:     20,
			ProposedDate: "2026-09-15",
			ProposedTime: "10:00",
		}, 1)
		if !errors.Is(err, ErrSubjectNotUnlocked) {
			t.Errorf("Expected ErrSubjectNotUnlocked, got %v", err)
		}
	})

	t.Run("missing course", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))

		_, err := service.Create(ctx, &CreateScheduleRequest{
			CourseID:     999,
			ProposedDate: "2026-09-15",
			ProposedTime: "10:00",
		}, 1)
		if !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("Expected ErrCourseNotFound, got %v", err)
		}
	})

	t.Run("malformed time slot fails validation", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		markPaid(repo, 20, models.SubjectInterview, 1)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))

		_, err := service.Create(ctx, &CreateScheduleRequest{
			CourseID:     20,
			ProposedDate: "2026-09-15",
			ProposedTime: "ten o'clock",
		}, 1)
		if !IsValidationError(err) {
			t.Errorf("Expected a validation error, got %v", err)
		}
	})
}

func TestScheduleService_Get(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	repo := newMockRepository()
	seedScheduleFixtures(repo)
	service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
	request := seedScheduleRequest(repo, models.SchedulePending)

	t.Run("owner reads own request", func(t *testing.T) {
		got, err := service.Get(ctx, request.ID, 1, models.RoleStudent)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.ID != request.ID {
			t.Errorf("Got the wrong request: %d", got.ID)
		}
	})

	t.Run("other students are denied", func(t *testing.T) {
		_, err := service.Get(ctx, request.ID, 42, models.RoleStudent)
		if !IsPermissionError(err) {
			t.Errorf("Expected a permission error, got %v", err)
		}
	})

	t.Run("staff read any request", func(t *testing.T) {
		if _, err := service.Get(ctx, request.ID, 3, models.RoleHR); err != nil {
			t.Errorf("HR read failed: %v", err)
		}
	})

	t.Run("missing request", func(t *testing.T) {
		_, err := service.Get(ctx, 999, 1, models.RoleStudent)
		if !errors.Is(err, ErrScheduleNotFound) {
			t.Errorf("Expected ErrScheduleNotFound, got %v", err)
		}
	})
}

func TestScheduleService_Transitions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	t.Run("pending to approved", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		publisher := events.NewMockEventPublisher(logger)
		service := newTestScheduleService(repo, publisher)
		request := seedScheduleRequest(repo, models.SchedulePending)

		if err := service.Approve(ctx, request.ID, 3); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}
		if request.Status != models.ScheduleApproved {
			t.Errorf("Expected approved, got %s", request.Status)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeScheduleDecided {
			t.Fatalf("Expected one %s event, got %v", events.TypeScheduleDecided, published)
		}
	})

	t.Run("reject records the reason", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
		request := seedScheduleRequest(repo, models.SchedulePending)

		if err := service.Reject(ctx, request.ID, "no interviewer available that week", 3); err != nil {
			t.Fatalf("Reject failed: %v", err)
		}
		if request.Status != models.ScheduleRejected {
			t.Errorf("Expected rejected, got %s", request.Status)
		}
		if request.RejectionReason == nil || *request.RejectionReason != "no interviewer available that week" {
			t.Error("Rejection reason was not recorded")
		}
	})

	t.Run("reject without a reason fails validation", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
		request := seedScheduleRequest(repo, models.SchedulePending)

		err := service.Reject(ctx, request.ID, "", 3)
		if !IsValidationError(err) {
			t.Errorf("Expected a validation error, got %v", err)
		}
	})

	t.Run("approved to scheduled pins slot and interviewer", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
		request := seedScheduleRequest(repo, models.ScheduleApproved)

		err := service.Schedule(ctx, request.ID, &AssignScheduleRequest{
			ScheduledDate:     "2026-09-20",
			ScheduledTimeSlot: "14:30",
			InterviewerID:     2,
		}, 3)
		if err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}

		if request.Status != models.ScheduleScheduled {
			t.Errorf("Expected scheduled, got %s", request.Status)
		}
		if request.ScheduledDate == nil || *request.ScheduledDate != "2026-09-20" {
			t.Error("Scheduled date was not recorded")
		}
		if request.AssignedInterviewerID == nil || *request.AssignedInterviewerID != 2 {
			t.Error("Interviewer was not assigned")
		}
	})

	t.Run("students cannot be assigned as interviewer", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
		request := seedScheduleRequest(repo, models.ScheduleApproved)

		err := service.Schedule(ctx, request.ID, &AssignScheduleRequest{
			ScheduledDate:     "2026-09-20",
			ScheduledTimeSlot: "14:30",
			InterviewerID:     1,
		}, 3)
		if !IsPermissionError(err) {
			t.Errorf("Expected a permission error, got %v", err)
		}
	})

	t.Run("scheduled to completed", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
		request := seedScheduleRequest(repo, models.ScheduleScheduled)

		if err := service.Complete(ctx, request.ID, 3); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if request.Status != models.ScheduleCompleted {
			t.Errorf("Expected completed, got %s", request.Status)
		}
	})

	t.Run("illegal jumps are refused before touching the store", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))

		// Completing a pending request skips the approved and scheduled steps.
		request := seedScheduleRequest(repo, models.SchedulePending)
		err := service.Complete(ctx, request.ID, 3)
		if !IsConflictError(err) {
			t.Errorf("Expected a conflict for an illegal jump, got %v", err)
		}
		if request.Status != models.SchedulePending {
			t.Errorf("Request must stay pending, got %s", request.Status)
		}

		// Terminal states accept nothing.
		done := seedScheduleRequest(repo, models.ScheduleCompleted)
		if err := service.Approve(ctx, done.ID, 3); !IsConflictError(err) {
			t.Errorf("Expected a conflict on a terminal request, got %v", err)
		}
	})

	t.Run("second racing decision loses with a conflict", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
		request := seedScheduleRequest(repo, models.SchedulePending)

		if err := service.Approve(ctx, request.ID, 3); err != nil {
			t.Fatalf("First decision failed: %v", err)
		}

		err := service.Reject(ctx, request.ID, "too late", 4)
		if !IsConflictError(err) {
			t.Errorf("Expected a conflict for the losing decision, got %v", err)
		}
		if request.Status != models.ScheduleApproved {
			t.Errorf("First decision must stand, got %s", request.Status)
		}
	})

	t.Run("deciding an unknown request is not found", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))

		if err := service.Approve(ctx, 999, 3); !errors.Is(err, ErrScheduleNotFound) {
			t.Errorf("Expected ErrScheduleNotFound, got %v", err)
		}
	})
}

func TestScheduleService_Cancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	t.Run("owner cancels a pending request", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
		request := seedScheduleRequest(repo, models.SchedulePending)

		if err := service.Cancel(ctx, request.ID, 1, models.RoleStudent); err != nil {
			t.Fatalf("Cancel failed: %v", err)
		}
		if request.Status != models.ScheduleCancelled {
			t.Errorf("Expected cancelled, got %s", request.Status)
		}
	})

	t.Run("owner cannot cancel once approved", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
		request := seedScheduleRequest(repo, models.ScheduleApproved)

		err := service.Cancel(ctx, request.ID, 1, models.RoleStudent)
		if !errors.Is(err, ErrScheduleNotTransitable) {
			t.Errorf("Expected ErrScheduleNotTransitable, got %v", err)
		}
	})

	t.Run("another student cannot cancel", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
		request := seedScheduleRequest(repo, models.SchedulePending)

		err := service.Cancel(ctx, request.ID, 42, models.RoleStudent)
		if !IsPermissionError(err) {
			t.Errorf("Expected a permission error, got %v", err)
		}
	})

	t.Run("staff cancel an approved request", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
		request := seedScheduleRequest(repo, models.ScheduleApproved)

		if err := service.Cancel(ctx, request.ID, 3, models.RoleHR); err != nil {
			t.Fatalf("Staff cancel failed: %v", err)
		}
		if request.Status != models.ScheduleCancelled {
			t.Errorf("Expected cancelled, got %s", request.Status)
		}
	})

	t.Run("staff cannot cancel a held interview", func(t *testing.T) {
		repo := newMockRepository()
		seedScheduleFixtures(repo)
		service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))
		request := seedScheduleRequest(repo, models.ScheduleCompleted)

		err := service.Cancel(ctx, request.ID, 3, models.RoleHR)
		if !errors.Is(err, ErrScheduleNotTransitable) {
			t.Errorf("Expected ErrScheduleNotTransitable, got %v", err)
		}
	})
}

func TestScheduleService_List(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	repo := newMockRepository()
	seedScheduleFixtures(repo)
	service := newTestScheduleService(repo, events.NewMockEventPublisher(logger))

	seedScheduleRequest(repo, models.SchedulePending)
	seedScheduleRequest(repo, models.ScheduleApproved)
	seedScheduleRequest(repo, models.SchedulePending)

	pending := models.SchedulePending
	resp, err := service.List(ctx, repositories.ScheduleFilters{Status: &pending, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("Expected 2 pending requests, got %d", resp.Total)
	}
	for _, request := range resp.Requests {
		if request.Status != models.SchedulePending {
			t.Errorf("Filtered listing leaked status %s", request.Status)
		}
	}
}
