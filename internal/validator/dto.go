package validator

// ===== AUTH =====

// RegisterRequest represents the request structure for student registration
type RegisterRequest struct {
	Username       string  `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=8,max=72"`
	Phone          string  `json:"phone" validate:"required,min=10,max=15"`
	OTP            string  `json:"otp" validate:"required,len=6,numeric"`
	FullName       *string `json:"full_name" validate:"omitempty,max=100"`
	Specialization *string `json:"specialization" validate:"omitempty,max=100"`
}

// LoginRequest represents the request structure for credential login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SendOTPRequest represents the request structure for phone verification
type SendOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=10,max=15"`
}

// UserCreateRequest represents the admin request for creating staff accounts
type UserCreateRequest struct {
	Username       string  `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=8,max=72"`
	Role           string  `json:"role" validate:"required,user_role"`
	FullName       *string `json:"full_name" validate:"omitempty,max=100"`
	Specialization *string `json:"specialization" validate:"omitempty,max=100"`
}

// ===== CATALOG =====

// ExamCreateRequest represents the request structure for creating exams
type ExamCreateRequest struct {
	Title       string                  `json:"title" validate:"required,min=1,max=200"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	Duration    int                     `json:"duration" validate:"required,min=5,max=300"`
	Fee         *int                    `json:"fee" validate:"omitempty,min=0"`
	Questions   []QuestionCreateRequest `json:"questions" validate:"omitempty,dive"`
}

// ExamUpdateRequest represents the request structure for updating exams
type ExamUpdateRequest struct {
	Title       *string                 `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	Duration    *int                    `json:"duration" validate:"omitempty,min=5,max=300"`
	Fee         *int                    `json:"fee" validate:"omitempty,min=0"`
	Questions   []QuestionCreateRequest `json:"questions" validate:"omitempty,dive"`
}

// QuestionCreateRequest represents a multiple-choice question inside an exam
type QuestionCreateRequest struct {
	Text          string   `json:"text" validate:"required,min=1,max=2000"`
	Options       []string `json:"options" validate:"required,len=4,dive,required,max=500"`
	CorrectOption int      `json:"correct_option" validate:"min=0,max=3"`
	Marks         int      `json:"marks" validate:"required,min=1,max=100"`
}

// CourseCreateRequest represents the request structure for creating interview courses
type CourseCreateRequest struct {
	Title       string                           `json:"title" validate:"required,min=1,max=200"`
	Description *string                          `json:"description" validate:"omitempty,max=1000"`
	Duration    int                              `json:"duration" validate:"required,min=5,max=300"`
	Fee         *int                             `json:"fee" validate:"omitempty,min=0"`
	Questions   []InterviewQuestionCreateRequest `json:"questions" validate:"omitempty,dive"`
}

// CourseUpdateRequest represents the request structure for updating interview courses
type CourseUpdateRequest struct {
	Title       *string                          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                          `json:"description" validate:"omitempty,max=1000"`
	Duration    *int                             `json:"duration" validate:"omitempty,min=5,max=300"`
	Fee         *int                             `json:"fee" validate:"omitempty,min=0"`
	Questions   []InterviewQuestionCreateRequest `json:"questions" validate:"omitempty,dive"`
}

// InterviewQuestionCreateRequest represents an open-ended interview question
type InterviewQuestionCreateRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// ===== PAYMENTS =====

// CreateOrderRequest represents the request structure for opening a payment order
type CreateOrderRequest struct {
	SubjectID   uint   `json:"subject_id" validate:"required"`
	SubjectKind string `json:"subject_kind" validate:"required,subject_kind"`
	PayerID     uint   `json:"payer_id" validate:"required"`
}

// UploadProofRequest carries the form fields accompanying a proof
// screenshot. Subject and payer ids only matter when no order with the
// given id exists yet and the entry has to be created on the fly.
type UploadProofRequest struct {
	OrderID       string  `form:"order_id" validate:"required,order_id"`
	TransactionID *string `form:"transaction_id" validate:"omitempty,max=100"`
	UpiID         *string `form:"upi_id" validate:"omitempty,upi_id"`
	SubjectID     uint    `form:"subject_id" validate:"omitempty"`
	SubjectKind   string  `form:"subject_kind" validate:"omitempty,subject_kind"`
	PayerID       uint    `form:"payer_id" validate:"omitempty"`
}

// PaymentDecisionRequest represents the admin approve/reject payload
type PaymentDecisionRequest struct {
	OrderID string  `json:"order_id" validate:"required,order_id"`
	Remarks *string `json:"remarks" validate:"omitempty,max=500"`
}

// ===== SUBMISSIONS =====

// SubmitExamRequest represents a student's answer sheet
type SubmitExamRequest struct {
	Answers map[string]int `json:"answers" validate:"required,min=1"`
}

// SubmitInterviewRequest represents a completed interview attempt payload
type SubmitInterviewRequest struct {
	Responses map[string]string `json:"responses" validate:"required,min=1"`
}

// ===== SCHEDULING =====

// ScheduleCreateRequest represents a student's interview slot request
type ScheduleCreateRequest struct {
	CourseID     uint    `json:"course_id" validate:"required"`
	ProposedDate string  `json:"proposed_date" validate:"required,datetime=2006-01-02"`
	ProposedTime string  `json:"proposed_time" validate:"required,time_slot"`
	Notes        *string `json:"notes" validate:"omitempty,max=500"`
}

// ScheduleAssignRequest represents the payload that moves an approved
// request to scheduled
type ScheduleAssignRequest struct {
	ScheduledDate     string `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	ScheduledTimeSlot string `json:"scheduled_time_slot" validate:"required,time_slot"`
	InterviewerID     uint   `json:"interviewer_id" validate:"required"`
}

// ScheduleRejectRequest represents the admin rejection payload
type ScheduleRejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
