package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AssessHub-IN/portal-service/internal/models"
)

var upiIDPattern = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,64}@[a-zA-Z]{2,32}$`)

var timeSlotPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Order ids are uuid-like handles and double as filename components.
var orderIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateCreateOrder validates order creation business rules
func (bv *BusinessValidator) ValidateCreateOrder(req *CreateOrderRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateExamCreate validates exam creation business rules
func (bv *BusinessValidator) ValidateExamCreate(req *ExamCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateQuestionSet(req.Questions)...)

	return errors
}

// ValidateExamUpdate validates exam update business rules
func (bv *BusinessValidator) ValidateExamUpdate(req *ExamUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	if req.Questions != nil {
		errors = append(errors, bv.validateQuestionSet(req.Questions)...)
	}

	return errors
}

// ValidatePaymentDecision checks that a ledger entry is decidable: only
// entries awaiting verification may be approved or rejected.
func (bv *BusinessValidator) ValidatePaymentDecision(current models.PaymentStatus) ValidationErrors {
	var errors ValidationErrors

	if current != models.PaymentPendingVerification {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot decide a payment in state %s", current),
			Value:   current,
			Rule:    "status_transition",
		})
	}

	return errors
}

// ValidateProofUpload checks that a proof may be attached to an entry in
// its current state. Terminal entries never accept a new proof.
func (bv *BusinessValidator) ValidateProofUpload(current models.PaymentStatus) ValidationErrors {
	var errors ValidationErrors

	if current.Terminal() {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot attach proof to a payment in state %s", current),
			Value:   current,
			Rule:    "status_transition",
		})
	}

	return errors
}

// ValidateScheduleTransition validates interview schedule status transitions
func (bv *BusinessValidator) ValidateScheduleTransition(current, next models.ScheduleStatus) ValidationErrors {
	var errors ValidationErrors

	allowedTransitions := map[models.ScheduleStatus][]models.ScheduleStatus{
		models.SchedulePending:   {models.ScheduleApproved, models.ScheduleRejected, models.ScheduleCancelled},
		models.ScheduleApproved:  {models.ScheduleScheduled, models.ScheduleCancelled},
		models.ScheduleScheduled: {models.ScheduleCompleted, models.ScheduleCancelled},
		models.ScheduleRejected:  {},
		models.ScheduleCompleted: {},
		models.ScheduleCancelled: {},
	}

	allowed := false
	for _, allowedStatus := range allowedTransitions[current] {
		if next == allowedStatus {
			allowed = true
			break
		}
	}

	if !allowed {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
			Value:   next,
			Rule:    "status_transition",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Catalog discriminator: exam or interview
	bv.validate.RegisterValidation("subject_kind", func(fl validator.FieldLevel) bool {
		kind := models.SubjectKind(fl.Field().String())
		return kind == models.SubjectExam || kind == models.SubjectInterview
	})

	// UPI handle shape: name@provider
	bv.validate.RegisterValidation("upi_id", func(fl validator.FieldLevel) bool {
		return upiIDPattern.MatchString(fl.Field().String())
	})

	// Ledger order handle
	bv.validate.RegisterValidation("order_id", func(fl validator.FieldLevel) bool {
		return orderIDPattern.MatchString(fl.Field().String())
	})

	// Role validation against the known role set
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.ValidRole(models.UserRole(fl.Field().String()))
	})

	// 24h HH:MM slot
	bv.validate.RegisterValidation("time_slot", func(fl validator.FieldLevel) bool {
		return timeSlotPattern.MatchString(fl.Field().String())
	})
}

// validateQuestionSet validates cross-field rules for a question set
func (bv *BusinessValidator) validateQuestionSet(questions []QuestionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	for i, q := range questions {
		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			key := strings.TrimSpace(strings.ToLower(opt))
			if seen[key] {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("questions[%d].options", i),
					Message: "options must be distinct",
					Value:   opt,
					Rule:    "business_logic",
				})
				break
			}
			seen[key] = true
		}

		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].correct_option", i),
				Message: "must index one of the provided options",
				Value:   q.CorrectOption,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}
