package models

import (
	"time"
)

type PaymentStatus string

const (
	// PaymentPending: order created, proof not yet uploaded.
	PaymentPending PaymentStatus = "pending"
	// PaymentPendingVerification: proof uploaded, awaiting an admin decision.
	PaymentPendingVerification PaymentStatus = "pending_verification"
	PaymentCompleted           PaymentStatus = "completed"
	PaymentRejected            PaymentStatus = "rejected"

	// PaymentNotPaid is never stored; it is the derived status reported
	// when no ledger entry exists for a (subject, payer) pair.
	PaymentNotPaid PaymentStatus = "not_paid"
)

// Terminal reports whether s allows no further transitions.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentRejected
}

// PaymentLedgerEntry is one purchase attempt. The ledger is append-only:
// entries never move backwards, and a rejected entry is retried by
// creating a fresh order rather than mutating the old one.
type PaymentLedgerEntry struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	OrderID     string        `json:"order_id" gorm:"uniqueIndex;not null;size:64"`
	SubjectID   uint          `json:"subject_id" gorm:"not null;index:idx_subject_payer,priority:1"`
	SubjectKind SubjectKind   `json:"subject_kind" gorm:"not null;index:idx_subject_payer,priority:2;size:20" validate:"required,subject_kind"`
	PayerID     uint          `json:"payer_id" gorm:"not null;index:idx_subject_payer,priority:3"`
	Amount      int           `json:"amount" gorm:"not null"`
	Currency    string        `json:"currency" gorm:"not null;default:INR;size:10"`
	Status      PaymentStatus `json:"status" gorm:"not null;default:pending;index;size:30"`

	// Proof of payment
	ScreenshotPath *string `json:"screenshot_path" gorm:"size:500"`
	TransactionID  *string `json:"transaction_id" gorm:"size:100"`
	UpiID          *string `json:"upi_id" gorm:"size:100"`

	// Decision
	AdminRemarks *string    `json:"admin_remarks" gorm:"type:text"`
	UploadedAt   *time.Time `json:"uploaded_at"`
	DecidedAt    *time.Time `json:"decided_at"`

	CreatedAt time.Time `json:"created_at" gorm:"index:idx_subject_payer,priority:4,sort:desc"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Payer *User `json:"payer,omitempty" gorm:"foreignKey:PayerID"`

	// Display fields joined in by listings (not stored)
	SubjectTitle  string `json:"subject_title,omitempty" gorm:"-"`
	PayerUsername string `json:"payer_username,omitempty" gorm:"-"`
	PayerEmail    string `json:"payer_email,omitempty" gorm:"-"`
}

func (PaymentLedgerEntry) TableName() string {
	return "payment_ledger_entries"
}
