package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role      *models.UserRole `json:"role"`
	Search    string           `json:"search"` // username or email substring
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

type CatalogFilters struct {
	CreatedBy *uint  `json:"created_by"`
	Search    string `json:"search"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"` // "created_at", "title"
	SortOrder string `json:"sort_order"`
}

type PaymentFilters struct {
	Status      *models.PaymentStatus `json:"status"`
	SubjectKind *models.SubjectKind   `json:"subject_kind"`
	PayerID     *uint                 `json:"payer_id"`
	DateFrom    *time.Time            `json:"date_from"`
	DateTo      *time.Time            `json:"date_to"`
	Limit       int                   `json:"limit"`
	Offset      int                   `json:"offset"`
	SortBy      string                `json:"sort_by"`
	SortOrder   string                `json:"sort_order"`
}

type ScheduleFilters struct {
	Status        *models.ScheduleStatus `json:"status"`
	StudentID     *uint                  `json:"student_id"`
	CourseID      *uint                  `json:"course_id"`
	InterviewerID *uint                  `json:"interviewer_id"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
	SortBy        string                 `json:"sort_by"`
	SortOrder     string                 `json:"sort_order"`
}

type SubmissionFilters struct {
	UserID *uint `json:"user_id"`
	ExamID *uint `json:"exam_id"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ===== DECISION HELPERS =====

// PaymentDecision carries the admin approve/reject outcome applied to a
// pending_verification entry.
type PaymentDecision struct {
	Status    models.PaymentStatus
	Remarks   *string
	DecidedAt time.Time
}

// ===== STATISTICS STRUCTS =====

type PortalStats struct {
	PendingVerifications int64 `json:"pending_verifications"`
	CompletedPayments    int64 `json:"completed_payments"`
	RejectedPayments     int64 `json:"rejected_payments"`
	RegisteredStudents   int64 `json:"registered_students"`
	TotalSubmissions     int64 `json:"total_submissions"`
	PendingSchedules     int64 `json:"pending_schedules"`
}

// ===== REPOSITORY INTERFACES =====

// UserRepository handles the identity store.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

// ExamRepository handles the exam catalog (questions embedded).
type ExamRepository interface {
	Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters CatalogFilters) ([]*models.Exam, int64, error)
	ReplaceQuestions(ctx context.Context, tx *gorm.DB, examID uint, questions []models.ExamQuestion) error
}

// InterviewCourseRepository handles the interview-course catalog.
type InterviewCourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.InterviewCourse) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewCourse, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewCourse, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.InterviewCourse) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters CatalogFilters) ([]*models.InterviewCourse, int64, error)
	ReplaceQuestions(ctx context.Context, tx *gorm.DB, courseID uint, questions []models.InterviewQuestion) error
}

// PaymentRepository handles the append-only payment ledger.
type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.PaymentLedgerEntry) error
	GetByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.PaymentLedgerEntry, error)

	// GetLatestByPair returns the most recent entry for a (subject, payer)
	// pair, or a not-found error when the pair has no entries at all.
	GetLatestByPair(ctx context.Context, tx *gorm.DB, subjectID uint, kind models.SubjectKind, payerID uint) (*models.PaymentLedgerEntry, error)

	// AttachProof moves an entry to pending_verification and records the
	// uploaded proof details.
	AttachProof(ctx context.Context, tx *gorm.DB, entry *models.PaymentLedgerEntry) error

	// Decide applies an approve/reject decision with a conditional update
	// guarded on status = pending_verification. Returns the number of rows
	// updated: 0 means the entry was not in pending_verification.
	Decide(ctx context.Context, tx *gorm.DB, orderID string, decision PaymentDecision) (int64, error)

	List(ctx context.Context, tx *gorm.DB, filters PaymentFilters) ([]*models.PaymentLedgerEntry, int64, error)
	ListPending(ctx context.Context, tx *gorm.DB, filters PaymentFilters) ([]*models.PaymentLedgerEntry, int64, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, status models.PaymentStatus) (int64, error)
}

// SubmissionRepository handles exam submissions and interview attempts.
type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	List(ctx context.Context, tx *gorm.DB, filters SubmissionFilters) ([]*models.Submission, int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	CreateInterviewAttempt(ctx context.Context, tx *gorm.DB, attempt *models.InterviewAttempt) error
	ListInterviewAttempts(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.InterviewAttempt, error)
}

// ScheduleRepository handles interview schedule requests.
type ScheduleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, req *models.InterviewScheduleRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewScheduleRequest, error)
	List(ctx context.Context, tx *gorm.DB, filters ScheduleFilters) ([]*models.InterviewScheduleRequest, int64, error)

	// Transition applies updates guarded on the expected prior status.
	// Returns the number of rows updated: 0 means the request was not in
	// the expected state.
	Transition(ctx context.Context, tx *gorm.DB, id uint, from models.ScheduleStatus, updates map[string]interface{}) (int64, error)

	CountByStatus(ctx context.Context, tx *gorm.DB, status models.ScheduleStatus) (int64, error)
}
