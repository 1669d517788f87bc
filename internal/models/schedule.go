package models

import (
	"time"
)

type ScheduleStatus string

const (
	SchedulePending   ScheduleStatus = "pending"
	ScheduleApproved  ScheduleStatus = "approved"
	ScheduleRejected  ScheduleStatus = "rejected"
	ScheduleScheduled ScheduleStatus = "scheduled"
	ScheduleCompleted ScheduleStatus = "completed"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

// InterviewScheduleRequest is a student-proposed slot for a human-led
// interview. Creation is gated on the course being paid for; transitions
// are HR/admin-only except the student's own cancel while pending.
type InterviewScheduleRequest struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	StudentID uint `json:"student_id" gorm:"not null;index"`
	CourseID  uint `json:"course_id" gorm:"not null;index"`

	ProposedDate string  `json:"proposed_date" gorm:"not null;size:20" validate:"required"`
	ProposedTime string  `json:"proposed_time" gorm:"not null;size:20" validate:"required"`
	Notes        *string `json:"notes" gorm:"type:text" validate:"omitempty,max=1000"`

	Status          ScheduleStatus `json:"status" gorm:"not null;default:pending;index;size:20"`
	RejectionReason *string        `json:"rejection_reason" gorm:"type:text"`

	// Set when HR schedules the approved request.
	ScheduledDate         *string `json:"scheduled_date" gorm:"size:20"`
	ScheduledTimeSlot     *string `json:"scheduled_time_slot" gorm:"size:30"`
	AssignedInterviewerID *uint   `json:"assigned_interviewer_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Student     *User            `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course      *InterviewCourse `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Interviewer *User            `json:"interviewer,omitempty" gorm:"foreignKey:AssignedInterviewerID"`
}

func (InterviewScheduleRequest) TableName() string {
	return "interview_schedule_requests"
}
