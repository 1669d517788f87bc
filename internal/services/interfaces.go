package services

import (
	"context"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type SendOTPRequest = validator.SendOTPRequest
type CreateUserRequest = validator.UserCreateRequest

type CreateExamRequest = validator.ExamCreateRequest
type UpdateExamRequest = validator.ExamUpdateRequest
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest

type CreateOrderRequest = validator.CreateOrderRequest
type SubmitExamRequest = validator.SubmitExamRequest
type SubmitInterviewRequest = validator.SubmitInterviewRequest

type CreateScheduleRequest = validator.ScheduleCreateRequest
type AssignScheduleRequest = validator.ScheduleAssignRequest

// ===== AUTH DTOs =====

type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// ===== PAYMENT DTOs =====

type CreateOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// UploadProofInput carries the already-stored proof file details into the
// ledger. File validation and storage happen before this point.
type UploadProofInput struct {
	OrderID        string
	SubjectID      uint
	SubjectKind    models.SubjectKind
	PayerID        uint
	ScreenshotPath string
	TransactionID  *string
	UpiID          *string
}

// PaymentStatusResponse is the derived status for a (subject, payer) pair.
type PaymentStatusResponse struct {
	Paid    bool                 `json:"paid"`
	Status  models.PaymentStatus `json:"status"`
	OrderID *string              `json:"order_id,omitempty"`
}

type PollOrderResponse struct {
	Status    models.PaymentStatus `json:"status"`
	Completed bool                 `json:"completed"`
}

type PaymentListResponse struct {
	Payments []*models.PaymentLedgerEntry `json:"payments"`
	Total    int64                        `json:"total"`
	Page     int                          `json:"page"`
	Size     int                          `json:"size"`
}

// ===== CATALOG DTOs =====

type ExamListResponse struct {
	Exams []*models.Exam `json:"exams"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type CourseListResponse struct {
	Courses []*models.InterviewCourse `json:"courses"`
	Total   int64                     `json:"total"`
	Page    int                       `json:"page"`
	Size    int                       `json:"size"`
}

// ===== SUBMISSION DTOs =====

type SubmissionResult struct {
	SubmissionID uint    `json:"submission_id"`
	Score        int     `json:"score"`
	TotalMarks   int     `json:"total_marks"`
	Percentage   float64 `json:"percentage"`
}

type SubmissionListResponse struct {
	Submissions []*models.Submission `json:"submissions"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Size        int                  `json:"size"`
}

// ===== SCHEDULE DTOs =====

type ScheduleListResponse struct {
	Requests []*models.InterviewScheduleRequest `json:"requests"`
	Total    int64                              `json:"total"`
	Page     int                                `json:"page"`
	Size     int                                `json:"size"`
}

// ===== STUDENT PORTAL DTOs =====

// UnlockItem is a catalog item annotated with the caller's payment state.
type UnlockItem struct {
	SubjectID   uint                 `json:"subject_id"`
	SubjectKind models.SubjectKind   `json:"subject_kind"`
	Title       string               `json:"title"`
	Fee         int                  `json:"fee"`
	Paid        bool                 `json:"paid"`
	Status      models.PaymentStatus `json:"status"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	SendOTP(ctx context.Context, req *SendOTPRequest) error
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	GetProfile(ctx context.Context, userID uint) (*models.User, error)

	// Admin user management
	CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	DeleteUser(ctx context.Context, id uint, actorID uint) error
}

type PaymentService interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)
	UploadProof(ctx context.Context, input *UploadProofInput) error
	GetStatus(ctx context.Context, subjectID uint, kind models.SubjectKind, payerID uint) (*PaymentStatusResponse, error)
	PollOrder(ctx context.Context, orderID string) (*PollOrderResponse, error)

	ListPending(ctx context.Context, filters repositories.PaymentFilters) (*PaymentListResponse, error)
	Approve(ctx context.Context, orderID string, remarks *string, actorID uint) error
	Reject(ctx context.Context, orderID string, reason string, actorID uint) error

	// IsPaid reports whether the latest ledger entry for the pair is completed.
	IsPaid(ctx context.Context, subjectID uint, kind models.SubjectKind, payerID uint) (bool, error)
}

type ExamService interface {
	Create(ctx context.Context, req *CreateExamRequest, creatorID uint) (*models.Exam, error)
	Get(ctx context.Context, id uint) (*models.Exam, error)
	GetDetail(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.Exam, error)
	Update(ctx context.Context, id uint, req *UpdateExamRequest, userID uint) (*models.Exam, error)
	Delete(ctx context.Context, id uint, userID uint) error
	List(ctx context.Context, filters repositories.CatalogFilters) (*ExamListResponse, error)
}

type InterviewCourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, creatorID uint) (*models.InterviewCourse, error)
	Get(ctx context.Context, id uint) (*models.InterviewCourse, error)
	GetDetail(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.InterviewCourse, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest, userID uint) (*models.InterviewCourse, error)
	Delete(ctx context.Context, id uint, userID uint) error
	List(ctx context.Context, filters repositories.CatalogFilters) (*CourseListResponse, error)
}

type SubmissionService interface {
	SubmitExam(ctx context.Context, examID uint, userID uint, req *SubmitExamRequest) (*SubmissionResult, error)
	SubmitInterview(ctx context.Context, courseID uint, userID uint, req *SubmitInterviewRequest) (*models.InterviewAttempt, error)
	ListByUser(ctx context.Context, userID uint, filters repositories.SubmissionFilters) (*SubmissionListResponse, error)
	ListInterviewAttempts(ctx context.Context, userID uint) ([]*models.InterviewAttempt, error)
}

type ScheduleService interface {
	Create(ctx context.Context, req *CreateScheduleRequest, studentID uint) (*models.InterviewScheduleRequest, error)
	Get(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.InterviewScheduleRequest, error)
	List(ctx context.Context, filters repositories.ScheduleFilters) (*ScheduleListResponse, error)

	Approve(ctx context.Context, id uint, actorID uint) error
	Reject(ctx context.Context, id uint, reason string, actorID uint) error
	Schedule(ctx context.Context, id uint, req *AssignScheduleRequest, actorID uint) error
	Complete(ctx context.Context, id uint, actorID uint) error
	Cancel(ctx context.Context, id uint, actorID uint, role models.UserRole) error
}

type StudentService interface {
	Unlocks(ctx context.Context, userID uint) ([]*UnlockItem, error)
	MySubmissions(ctx context.Context, userID uint, filters repositories.SubmissionFilters) (*SubmissionListResponse, error)
	MyScheduleRequests(ctx context.Context, userID uint, filters repositories.ScheduleFilters) (*ScheduleListResponse, error)
}

type StatsService interface {
	PortalStats(ctx context.Context) (*repositories.PortalStats, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Payment() PaymentService
	Exam() ExamService
	InterviewCourse() InterviewCourseService
	Submission() SubmissionService
	Schedule() ScheduleService
	Student() StudentService
	Stats() StatsService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
