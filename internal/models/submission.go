package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission records one graded exam attempt. Created exactly once by
// the scoring operation and never mutated afterwards.
type Submission struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;index"`
	ExamID uint `json:"exam_id" gorm:"not null;index"`

	// Answers maps question id -> selected option index.
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`

	Score       int     `json:"score" gorm:"not null"`
	TotalMarks  int     `json:"total_marks" gorm:"not null"`
	Percentage  float64 `json:"percentage" gorm:"not null"`
	SubmittedAt time.Time `json:"submitted_at"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Exam *Exam `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
}

// InterviewAttempt records one completed interview run for a course.
// Evaluation comes from the pluggable scorer and is stored as given.
type InterviewAttempt struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	UserID   uint `json:"user_id" gorm:"not null;index"`
	CourseID uint `json:"course_id" gorm:"not null;index"`

	Evaluation  datatypes.JSON `json:"evaluation" gorm:"type:jsonb"`
	CompletedAt time.Time      `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`

	User   *User            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course *InterviewCourse `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (InterviewAttempt) TableName() string {
	return "interview_attempts"
}
