package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope every published portal event travels in.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

// Event types emitted by the portal.
const (
	TypePaymentOrderCreated  = "payment.order_created"
	TypePaymentProofUploaded = "payment.proof_uploaded"
	TypePaymentApproved      = "payment.approved"
	TypePaymentRejected      = "payment.rejected"

	TypeExamSubmitted      = "exam.submitted"
	TypeInterviewCompleted = "interview.completed"

	TypeScheduleRequested = "schedule.requested"
	TypeScheduleDecided   = "schedule.decided"
)

// NewEvent builds an envelope with a fresh ID and the portal source tag.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "portal-service",
		Timestamp: time.Now(),
		Version:   "1.0",
		Data:      data,
	}
}

// PaymentEvent is the payload for payment lifecycle events.
type PaymentEvent struct {
	OrderID     string `json:"order_id"`
	SubjectID   uint   `json:"subject_id"`
	SubjectKind string `json:"subject_kind"`
	PayerID     uint   `json:"payer_id"`
	Amount      int    `json:"amount"`
	Status      string `json:"status"`
	Remarks     string `json:"remarks,omitempty"`
}

// SubmissionEvent is the payload for exam and interview completion events.
type SubmissionEvent struct {
	UserID     uint    `json:"user_id"`
	SubjectID  uint    `json:"subject_id"`
	Kind       string  `json:"kind"`
	Score      int     `json:"score,omitempty"`
	TotalMarks int     `json:"total_marks,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
}

// ScheduleEvent is the payload for interview scheduling events.
type ScheduleEvent struct {
	RequestID uint   `json:"request_id"`
	StudentID uint   `json:"student_id"`
	CourseID  uint   `json:"course_id"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}
