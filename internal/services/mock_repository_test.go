package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
)

// mockRepository is an in-memory repositories.Repository for service tests.
// Each entity repo keeps its rows in plain slices/maps so tests can seed
// state directly and assert on what the services stored.
type mockRepository struct {
	users     *mockUserRepo
	exams     *mockExamRepo
	courses   *mockCourseRepo
	payments  *mockPaymentRepo
	subs      *mockSubmissionRepo
	schedules *mockScheduleRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:     &mockUserRepo{byID: make(map[uint]*models.User)},
		exams:     &mockExamRepo{byID: make(map[uint]*models.Exam)},
		courses:   &mockCourseRepo{byID: make(map[uint]*models.InterviewCourse)},
		payments:  &mockPaymentRepo{},
		subs:      &mockSubmissionRepo{},
		schedules: &mockScheduleRepo{byID: make(map[uint]*models.InterviewScheduleRequest)},
	}
}

func (m *mockRepository) User() repositories.UserRepository                       { return m.users }
func (m *mockRepository) Exam() repositories.ExamRepository                       { return m.exams }
func (m *mockRepository) InterviewCourse() repositories.InterviewCourseRepository { return m.courses }
func (m *mockRepository) Payment() repositories.PaymentRepository                 { return m.payments }
func (m *mockRepository) Submission() repositories.SubmissionRepository           { return m.subs }
func (m *mockRepository) Schedule() repositories.ScheduleRepository               { return m.schedules }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== USERS =====

type mockUserRepo struct {
	byID   map[uint]*models.User
	nextID uint
}

func (r *mockUserRepo) add(user *models.User) *models.User {
	if user.ID == 0 {
		r.nextID++
		user.ID = r.nextID
	} else if user.ID > r.nextID {
		r.nextID = user.ID
	}
	r.byID[user.ID] = user
	return user
}

func (r *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.add(user)
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *mockUserRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	for _, user := range r.byID {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	for _, user := range r.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if _, ok := r.byID[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.byID[user.ID] = user
	return nil
}

func (r *mockUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.byID, id)
	return nil
}

func (r *mockUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var matched []*models.User
	for _, user := range r.byID {
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		if filters.Search != "" &&
			!strings.Contains(user.Username, filters.Search) &&
			!strings.Contains(user.Email, filters.Search) {
			continue
		}
		matched = append(matched, user)
	}
	total := int64(len(matched))
	return paginate(matched, filters.Limit, filters.Offset), total, nil
}

func (r *mockUserRepo) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, tx, username)
	return err == nil, nil
}

func (r *mockUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, tx, email)
	return err == nil, nil
}

// ===== EXAM CATALOG =====

type mockExamRepo struct {
	byID   map[uint]*models.Exam
	nextID uint
}

func (r *mockExamRepo) add(exam *models.Exam) *models.Exam {
	if exam.ID == 0 {
		r.nextID++
		exam.ID = r.nextID
	} else if exam.ID > r.nextID {
		r.nextID = exam.ID
	}
	r.byID[exam.ID] = exam
	return exam
}

func (r *mockExamRepo) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	r.add(exam)
	return nil
}

func (r *mockExamRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	exam, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (r *mockExamRepo) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	return r.GetByID(ctx, tx, id)
}

func (r *mockExamRepo) Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	if _, ok := r.byID[exam.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.byID[exam.ID] = exam
	return nil
}

func (r *mockExamRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.byID, id)
	return nil
}

func (r *mockExamRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.CatalogFilters) ([]*models.Exam, int64, error) {
	var matched []*models.Exam
	for _, exam := range r.byID {
		if filters.Search != "" && !strings.Contains(exam.Title, filters.Search) {
			continue
		}
		matched = append(matched, exam)
	}
	total := int64(len(matched))
	return paginate(matched, filters.Limit, filters.Offset), total, nil
}

func (r *mockExamRepo) ReplaceQuestions(ctx context.Context, tx *gorm.DB, examID uint, questions []models.ExamQuestion) error {
	exam, ok := r.byID[examID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	exam.Questions = questions
	return nil
}

// ===== INTERVIEW COURSE CATALOG =====

type mockCourseRepo struct {
	byID   map[uint]*models.InterviewCourse
	nextID uint
}

func (r *mockCourseRepo) add(course *models.InterviewCourse) *models.InterviewCourse {
	if course.ID == 0 {
		r.nextID++
		course.ID = r.nextID
	} else if course.ID > r.nextID {
		r.nextID = course.ID
	}
	r.byID[course.ID] = course
	return course
}

func (r *mockCourseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.InterviewCourse) error {
	r.add(course)
	return nil
}

func (r *mockCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewCourse, error) {
	course, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (r *mockCourseRepo) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewCourse, error) {
	return r.GetByID(ctx, tx, id)
}

func (r *mockCourseRepo) Update(ctx context.Context, tx *gorm.DB, course *models.InterviewCourse) error {
	if _, ok := r.byID[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.byID[course.ID] = course
	return nil
}

func (r *mockCourseRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(r.byID, id)
	return nil
}

func (r *mockCourseRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.CatalogFilters) ([]*models.InterviewCourse, int64, error) {
	var matched []*models.InterviewCourse
	for _, course := range r.byID {
		if filters.Search != "" && !strings.Contains(course.Title, filters.Search) {
			continue
		}
		matched = append(matched, course)
	}
	total := int64(len(matched))
	return paginate(matched, filters.Limit, filters.Offset), total, nil
}

func (r *mockCourseRepo) ReplaceQuestions(ctx context.Context, tx *gorm.DB, courseID uint, questions []models.InterviewQuestion) error {
	course, ok := r.byID[courseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	course.Questions = questions
	return nil
}

// ===== PAYMENT LEDGER =====

// mockPaymentRepo keeps entries in insertion order, so "latest" is the
// last appended match, mirroring the created_at ordering of the real repo.
type mockPaymentRepo struct {
	entries []*models.PaymentLedgerEntry
	nextID  uint
}

func (r *mockPaymentRepo) Create(ctx context.Context, tx *gorm.DB, entry *models.PaymentLedgerEntry) error {
	r.nextID++
	entry.ID = r.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *mockPaymentRepo) GetByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.PaymentLedgerEntry, error) {
	for _, entry := range r.entries {
		if entry.OrderID == orderID {
			return entry, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockPaymentRepo) GetLatestByPair(ctx context.Context, tx *gorm.DB, subjectID uint, kind models.SubjectKind, payerID uint) (*models.PaymentLedgerEntry, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if entry.SubjectID == subjectID && entry.SubjectKind == kind && entry.PayerID == payerID {
			return entry, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockPaymentRepo) AttachProof(ctx context.Context, tx *gorm.DB, entry *models.PaymentLedgerEntry) error {
	for i, existing := range r.entries {
		if existing.OrderID == entry.OrderID {
			r.entries[i] = entry
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *mockPaymentRepo) Decide(ctx context.Context, tx *gorm.DB, orderID string, decision repositories.PaymentDecision) (int64, error) {
	for _, entry := range r.entries {
		if entry.OrderID == orderID && entry.Status == models.PaymentPendingVerification {
			entry.Status = decision.Status
			entry.AdminRemarks = decision.Remarks
			decidedAt := decision.DecidedAt
			entry.DecidedAt = &decidedAt
			return 1, nil
		}
	}
	return 0, nil
}

func (r *mockPaymentRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.PaymentFilters) ([]*models.PaymentLedgerEntry, int64, error) {
	var matched []*models.PaymentLedgerEntry
	for _, entry := range r.entries {
		if filters.Status != nil && entry.Status != *filters.Status {
			continue
		}
		if filters.SubjectKind != nil && entry.SubjectKind != *filters.SubjectKind {
			continue
		}
		if filters.PayerID != nil && entry.PayerID != *filters.PayerID {
			continue
		}
		matched = append(matched, entry)
	}
	total := int64(len(matched))
	return paginate(matched, filters.Limit, filters.Offset), total, nil
}

func (r *mockPaymentRepo) ListPending(ctx context.Context, tx *gorm.DB, filters repositories.PaymentFilters) ([]*models.PaymentLedgerEntry, int64, error) {
	pending := models.PaymentPendingVerification
	filters.Status = &pending
	return r.List(ctx, tx, filters)
}

func (r *mockPaymentRepo) CountByStatus(ctx context.Context, tx *gorm.DB, status models.PaymentStatus) (int64, error) {
	var count int64
	for _, entry := range r.entries {
		if entry.Status == status {
			count++
		}
	}
	return count, nil
}

// ===== SUBMISSIONS =====

type mockSubmissionRepo struct {
	submissions []*models.Submission
	attempts    []*models.InterviewAttempt
	nextID      uint
}

func (r *mockSubmissionRepo) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	r.nextID++
	submission.ID = r.nextID
	r.submissions = append(r.submissions, submission)
	return nil
}

func (r *mockSubmissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	for _, sub := range r.submissions {
		if sub.ID == id {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSubmissionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var matched []*models.Submission
	for _, sub := range r.submissions {
		if filters.UserID != nil && sub.UserID != *filters.UserID {
			continue
		}
		if filters.ExamID != nil && sub.ExamID != *filters.ExamID {
			continue
		}
		matched = append(matched, sub)
	}
	total := int64(len(matched))
	return paginate(matched, filters.Limit, filters.Offset), total, nil
}

func (r *mockSubmissionRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return int64(len(r.submissions)), nil
}

func (r *mockSubmissionRepo) CreateInterviewAttempt(ctx context.Context, tx *gorm.DB, attempt *models.InterviewAttempt) error {
	r.nextID++
	attempt.ID = r.nextID
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *mockSubmissionRepo) ListInterviewAttempts(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.InterviewAttempt, error) {
	var matched []*models.InterviewAttempt
	for _, attempt := range r.attempts {
		if attempt.UserID == userID {
			matched = append(matched, attempt)
		}
	}
	return matched, nil
}

// ===== SCHEDULE REQUESTS =====

type mockScheduleRepo struct {
	byID   map[uint]*models.InterviewScheduleRequest
	order  []uint
	nextID uint
}

func (r *mockScheduleRepo) add(req *models.InterviewScheduleRequest) *models.InterviewScheduleRequest {
	if req.ID == 0 {
		r.nextID++
		req.ID = r.nextID
	} else if req.ID > r.nextID {
		r.nextID = req.ID
	}
	r.byID[req.ID] = req
	r.order = append(r.order, req.ID)
	return req
}

func (r *mockScheduleRepo) Create(ctx context.Context, tx *gorm.DB, req *models.InterviewScheduleRequest) error {
	r.add(req)
	return nil
}

func (r *mockScheduleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewScheduleRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return req, nil
}

func (r *mockScheduleRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ScheduleFilters) ([]*models.InterviewScheduleRequest, int64, error) {
	var matched []*models.InterviewScheduleRequest
	for _, id := range r.order {
		req := r.byID[id]
		if filters.Status != nil && req.Status != *filters.Status {
			continue
		}
		if filters.StudentID != nil && req.StudentID != *filters.StudentID {
			continue
		}
		if filters.CourseID != nil && req.CourseID != *filters.CourseID {
			continue
		}
		if filters.InterviewerID != nil &&
			(req.AssignedInterviewerID == nil || *req.AssignedInterviewerID != *filters.InterviewerID) {
			continue
		}
		matched = append(matched, req)
	}
	total := int64(len(matched))
	return paginate(matched, filters.Limit, filters.Offset), total, nil
}

func (r *mockScheduleRepo) Transition(ctx context.Context, tx *gorm.DB, id uint, from models.ScheduleStatus, updates map[string]interface{}) (int64, error) {
	req, ok := r.byID[id]
	if !ok || req.Status != from {
		return 0, nil
	}

	for column, value := range updates {
		switch column {
		case "status":
			req.Status = value.(models.ScheduleStatus)
		case "rejection_reason":
			reason := value.(string)
			req.RejectionReason = &reason
		case "scheduled_date":
			date := value.(string)
			req.ScheduledDate = &date
		case "scheduled_time_slot":
			slot := value.(string)
			req.ScheduledTimeSlot = &slot
		case "assigned_interviewer_id":
			interviewerID := value.(uint)
			req.AssignedInterviewerID = &interviewerID
		}
	}
	return 1, nil
}

func (r *mockScheduleRepo) CountByStatus(ctx context.Context, tx *gorm.DB, status models.ScheduleStatus) (int64, error) {
	var count int64
	for _, req := range r.byID {
		if req.Status == status {
			count++
		}
	}
	return count, nil
}

// ===== SHARED HELPERS =====

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
