package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/AssessHub-IN/portal-service/internal/models"
)

func TestStatsService_PortalStats(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	repo := newMockRepository()
	repo.users.add(&models.User{Username: "asha", Email: "asha@example.com", Role: models.RoleStudent})
	repo.users.add(&models.User{Username: "ravi", Email: "ravi@example.com", Role: models.RoleStudent})
	repo.users.add(&models.User{Username: "meera", Email: "meera@example.com", Role: models.RoleHR})

	repo.payments.entries = append(repo.payments.entries,
		&models.PaymentLedgerEntry{OrderID: "a", Status: models.PaymentPendingVerification},
		&models.PaymentLedgerEntry{OrderID: "b", Status: models.PaymentCompleted},
		&models.PaymentLedgerEntry{OrderID: "c", Status: models.PaymentCompleted},
		&models.PaymentLedgerEntry{OrderID: "d", Status: models.PaymentRejected},
	)

	repo.subs.submissions = append(repo.subs.submissions,
		&models.Submission{ID: 1, UserID: 1, ExamID: 10},
		&models.Submission{ID: 2, UserID: 2, ExamID: 10},
	)

	repo.schedules.add(&models.InterviewScheduleRequest{StudentID: 1, CourseID: 20, Status: models.SchedulePending})
	repo.schedules.add(&models.InterviewScheduleRequest{StudentID: 2, CourseID: 20, Status: models.ScheduleCompleted})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	service := NewStatsService(repo, nil, logger, client)

	stats, err := service.PortalStats(ctx)
	if err != nil {
		t.Fatalf("PortalStats failed: %v", err)
	}

	if stats.PendingVerifications != 1 {
		t.Errorf("Expected 1 pending verification, got %d", stats.PendingVerifications)
	}
	if stats.CompletedPayments != 2 {
		t.Errorf("Expected 2 completed payments, got %d", stats.CompletedPayments)
	}
	if stats.RejectedPayments != 1 {
		t.Errorf("Expected 1 rejected payment, got %d", stats.RejectedPayments)
	}
	if stats.RegisteredStudents != 2 {
		t.Errorf("Expected 2 students, got %d", stats.RegisteredStudents)
	}
	if stats.TotalSubmissions != 2 {
		t.Errorf("Expected 2 submissions, got %d", stats.TotalSubmissions)
	}
	if stats.PendingSchedules != 1 {
		t.Errorf("Expected 1 pending schedule, got %d", stats.PendingSchedules)
	}
}

func TestStatsService_WithoutCache(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	repo := newMockRepository()
	service := NewStatsService(repo, nil, logger, nil)

	stats, err := service.PortalStats(context.Background())
	if err != nil {
		t.Fatalf("PortalStats without redis failed: %v", err)
	}
	if stats.TotalSubmissions != 0 {
		t.Errorf("Empty portal should have zero submissions, got %d", stats.TotalSubmissions)
	}
}
