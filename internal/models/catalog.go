package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubjectKind discriminates which catalog a ledger entry or schedule
// request points at.
type SubjectKind string

const (
	SubjectExam      SubjectKind = "exam"
	SubjectInterview SubjectKind = "interview"
)

// DefaultFee is the flat unlock price for every catalog item, in whole
// currency units.
const DefaultFee = 200

// HiddenAnswer replaces CorrectOption in student-facing views so the
// answer key never leaves the server.
const HiddenAnswer = -1

type Exam struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Duration    int     `json:"duration" gorm:"not null" validate:"required,min=5,max=300"` // minutes
	TotalMarks  int     `json:"total_marks" gorm:"not null"`
	Fee         int     `json:"fee" gorm:"not null;default:200"`

	// Metadata
	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []ExamQuestion `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
	Creator   *User          `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`

	// Computed (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

// ExamQuestion is embedded in its exam; there is no shared question pool.
type ExamQuestion struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ExamID        uint           `json:"exam_id" gorm:"not null;index"`
	Text          string         `json:"text" gorm:"not null;type:text" validate:"required,max=2000"`
	Options       datatypes.JSON `json:"options" gorm:"type:jsonb;not null"` // exactly 4 option strings
	// CorrectOption is replaced with HiddenAnswer in student-facing views.
	CorrectOption int            `json:"correct_option" gorm:"not null" validate:"min=0,max=3"`
	Marks         int            `json:"marks" gorm:"not null;default:1" validate:"required,min=1,max=100"`
	Position      int            `json:"position" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InterviewCourse struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Duration    int     `json:"duration" gorm:"not null" validate:"required,min=5,max=300"` // minutes
	Fee         int     `json:"fee" gorm:"not null;default:200"`

	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []InterviewQuestion `json:"questions,omitempty" gorm:"foreignKey:CourseID"`
	Creator   *User               `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`

	QuestionsCount int `json:"questions_count" gorm:"-"`
}

type InterviewQuestion struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Text     string `json:"text" gorm:"not null;type:text" validate:"required,max=2000"`
	Position int    `json:"position" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Exam) TableName() string {
	return "exams"
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}

func (InterviewCourse) TableName() string {
	return "interview_courses"
}

func (InterviewQuestion) TableName() string {
	return "interview_questions"
}
