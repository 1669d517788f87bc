package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/events"
	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/validator"
)

type paymentService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewPaymentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) PaymentService {
	return &paymentService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

// paymentTopic is the broker topic all payment lifecycle events go to.
const paymentTopic = "portal.payments"

// ===== ORDER LIFECYCLE =====

func (s *paymentService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	s.logger.Info("Creating payment order",
		"subject_id", req.SubjectID,
		"subject_kind", req.SubjectKind,
		"payer_id", req.PayerID)

	if errs := s.validator.ValidateCreateOrder(req); errs.HasErrors() {
		return nil, NewValidationError(errs)
	}

	kind := models.SubjectKind(req.SubjectKind)

	amount, err := s.subjectFee(ctx, req.SubjectID, kind)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.User().GetByID(ctx, s.db, req.PayerID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get payer: %w", err)
	}

	// A fresh order is always a fresh ledger entry. Callers who already
	// hold a completed entry simply get a redundant order.
	entry := &models.PaymentLedgerEntry{
		OrderID:     uuid.New().String(),
		SubjectID:   req.SubjectID,
		SubjectKind: kind,
		PayerID:     req.PayerID,
		Amount:      amount,
		Currency:    "INR",
		Status:      models.PaymentPending,
	}

	if err := s.repo.Payment().Create(ctx, s.db, entry); err != nil {
		return nil, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	s.publishPaymentEvent(ctx, events.TypePaymentOrderCreated, entry, "")

	s.logger.Info("Payment order created",
		"order_id", entry.OrderID,
		"amount", entry.Amount)

	return &CreateOrderResponse{
		OrderID:  entry.OrderID,
		Amount:   entry.Amount,
		Currency: entry.Currency,
		Status:   string(entry.Status),
	}, nil
}

func (s *paymentService) UploadProof(ctx context.Context, input *UploadProofInput) error {
	req := &validator.UploadProofRequest{
		OrderID:       input.OrderID,
		TransactionID: input.TransactionID,
		UpiID:         input.UpiID,
		SubjectID:     input.SubjectID,
		SubjectKind:   string(input.SubjectKind),
		PayerID:       input.PayerID,
	}
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return NewValidationError(errs)
	}

	s.logger.Info("Attaching payment proof",
		"order_id", input.OrderID)

	now := time.Now()

	entry, err := s.repo.Payment().GetByOrderID(ctx, s.db, input.OrderID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to get ledger entry: %w", err)
		}

		// Unknown order id: the client and server lost sync, or the
		// create-order step was skipped. Create the entry on the fly,
		// already awaiting verification.
		if input.SubjectID == 0 || input.PayerID == 0 {
			return ErrOrderNotFound
		}

		amount, feeErr := s.subjectFee(ctx, input.SubjectID, input.SubjectKind)
		if feeErr != nil {
			return feeErr
		}

		entry = &models.PaymentLedgerEntry{
			OrderID:        input.OrderID,
			SubjectID:      input.SubjectID,
			SubjectKind:    input.SubjectKind,
			PayerID:        input.PayerID,
			Amount:         amount,
			Currency:       "INR",
			Status:         models.PaymentPendingVerification,
			ScreenshotPath: &input.ScreenshotPath,
			TransactionID:  input.TransactionID,
			UpiID:          input.UpiID,
			UploadedAt:     &now,
		}

		if err := s.repo.Payment().Create(ctx, s.db, entry); err != nil {
			return fmt.Errorf("failed to create fallback ledger entry: %w", err)
		}

		s.publishPaymentEvent(ctx, events.TypePaymentProofUploaded, entry, "")
		s.logger.Info("Fallback ledger entry created for unknown order",
			"order_id", input.OrderID)
		return nil
	}

	if errs := s.validator.ValidateProofUpload(entry.Status); errs.HasErrors() {
		return ErrPaymentTerminal
	}

	entry.Status = models.PaymentPendingVerification
	entry.ScreenshotPath = &input.ScreenshotPath
	entry.TransactionID = input.TransactionID
	entry.UpiID = input.UpiID
	entry.UploadedAt = &now

	if err := s.repo.Payment().AttachProof(ctx, s.db, entry); err != nil {
		return fmt.Errorf("failed to attach proof: %w", err)
	}

	s.publishPaymentEvent(ctx, events.TypePaymentProofUploaded, entry, "")

	s.logger.Info("Payment proof attached",
		"order_id", input.OrderID)

	return nil
}

// ===== STATUS QUERIES =====

func (s *paymentService) GetStatus(ctx context.Context, subjectID uint, kind models.SubjectKind, payerID uint) (*PaymentStatusResponse, error) {
	entry, err := s.repo.Payment().GetLatestByPair(ctx, s.db, subjectID, kind, payerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &PaymentStatusResponse{
				Paid:   false,
				Status: models.PaymentNotPaid,
			}, nil
		}
		return nil, fmt.Errorf("failed to get latest ledger entry: %w", err)
	}

	return &PaymentStatusResponse{
		Paid:    entry.Status == models.PaymentCompleted,
		Status:  entry.Status,
		OrderID: &entry.OrderID,
	}, nil
}

func (s *paymentService) PollOrder(ctx context.Context, orderID string) (*PollOrderResponse, error) {
	entry, err := s.repo.Payment().GetByOrderID(ctx, s.db, orderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &PollOrderResponse{
		Status:    entry.Status,
		Completed: entry.Status == models.PaymentCompleted,
	}, nil
}

func (s *paymentService) IsPaid(ctx context.Context, subjectID uint, kind models.SubjectKind, payerID uint) (bool, error) {
	status, err := s.GetStatus(ctx, subjectID, kind, payerID)
	if err != nil {
		return false, err
	}
	return status.Paid, nil
}

// ===== ADMIN VERIFICATION =====

func (s *paymentService) ListPending(ctx context.Context, filters repositories.PaymentFilters) (*PaymentListResponse, error) {
	entries, total, err := s.repo.Payment().ListPending(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}

	for _, entry := range entries {
		s.fillDisplayInfo(ctx, entry)
	}

	page, size := pageFromOffset(filters.Limit, filters.Offset)
	return &PaymentListResponse{
		Payments: entries,
		Total:    total,
		Page:     page,
		Size:     size,
	}, nil
}

func (s *paymentService) Approve(ctx context.Context, orderID string, remarks *string, actorID uint) error {
	s.logger.Info("Approving payment",
		"order_id", orderID,
		"actor_id", actorID)

	return s.decide(ctx, orderID, models.PaymentCompleted, remarks, events.TypePaymentApproved)
}

func (s *paymentService) Reject(ctx context.Context, orderID string, reason string, actorID uint) error {
	s.logger.Info("Rejecting payment",
		"order_id", orderID,
		"actor_id", actorID)

	return s.decide(ctx, orderID, models.PaymentRejected, &reason, events.TypePaymentRejected)
}

// decide applies a terminal decision through a conditional update. Two
// racing admins resolve to exactly one winner; the loser gets a conflict.
func (s *paymentService) decide(ctx context.Context, orderID string, status models.PaymentStatus, remarks *string, eventType string) error {
	entry, err := s.repo.Payment().GetByOrderID(ctx, s.db, orderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to get ledger entry: %w", err)
	}

	if errs := s.validator.ValidatePaymentDecision(entry.Status); errs.HasErrors() {
		return NewConflictError("payment", fmt.Sprintf("order %s is not awaiting verification", orderID))
	}

	decision := repositories.PaymentDecision{
		Status:    status,
		Remarks:   remarks,
		DecidedAt: time.Now(),
	}

	rows, err := s.repo.Payment().Decide(ctx, s.db, orderID, decision)
	if err != nil {
		return fmt.Errorf("failed to decide payment: %w", err)
	}
	if rows == 0 {
		// The entry moved out of pending_verification between the read
		// and the update, or never reached it.
		return NewConflictError("payment", fmt.Sprintf("order %s is not awaiting verification", orderID))
	}

	entry.Status = status
	var remarkText string
	if remarks != nil {
		remarkText = *remarks
	}
	s.publishPaymentEvent(ctx, eventType, entry, remarkText)

	s.logger.Info("Payment decided",
		"order_id", orderID,
		"status", status)

	return nil
}

// ===== HELPERS =====

func (s *paymentService) subjectFee(ctx context.Context, subjectID uint, kind models.SubjectKind) (int, error) {
	switch kind {
	case models.SubjectExam:
		exam, err := s.repo.Exam().GetByID(ctx, s.db, subjectID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return 0, ErrExamNotFound
			}
			return 0, fmt.Errorf("failed to get exam: %w", err)
		}
		return exam.Fee, nil
	case models.SubjectInterview:
		course, err := s.repo.InterviewCourse().GetByID(ctx, s.db, subjectID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return 0, ErrCourseNotFound
			}
			return 0, fmt.Errorf("failed to get interview course: %w", err)
		}
		return course.Fee, nil
	default:
		return 0, NewValidationError(validator.ValidationErrors{{
			Field:   "subject_kind",
			Message: "must be 'exam' or 'interview'",
			Value:   kind,
			Rule:    "subject_kind",
		}})
	}
}

func (s *paymentService) fillDisplayInfo(ctx context.Context, entry *models.PaymentLedgerEntry) {
	switch entry.SubjectKind {
	case models.SubjectExam:
		if exam, err := s.repo.Exam().GetByID(ctx, s.db, entry.SubjectID); err == nil {
			entry.SubjectTitle = exam.Title
		}
	case models.SubjectInterview:
		if course, err := s.repo.InterviewCourse().GetByID(ctx, s.db, entry.SubjectID); err == nil {
			entry.SubjectTitle = course.Title
		}
	}

	if payer, err := s.repo.User().GetByID(ctx, s.db, entry.PayerID); err == nil {
		entry.PayerUsername = payer.Username
		entry.PayerEmail = payer.Email
	}
}

// publishPaymentEvent emits best-effort: a broker outage never fails the
// ledger operation.
func (s *paymentService) publishPaymentEvent(ctx context.Context, eventType string, entry *models.PaymentLedgerEntry, remarks string) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(eventType, &events.PaymentEvent{
		OrderID:     entry.OrderID,
		SubjectID:   entry.SubjectID,
		SubjectKind: string(entry.SubjectKind),
		PayerID:     entry.PayerID,
		Amount:      entry.Amount,
		Status:      string(entry.Status),
		Remarks:     remarks,
	})

	if err := s.eventPublisher.Publish(ctx, paymentTopic, event); err != nil {
		s.logger.Error("Failed to publish payment event",
			"error", err,
			"event_type", eventType,
			"order_id", entry.OrderID)
	}
}

// pageFromOffset converts limit/offset filters back into page/size for
// list responses.
func pageFromOffset(limit, offset int) (int, int) {
	if limit <= 0 {
		return 1, 0
	}
	return offset/limit + 1, limit
}
