package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/services"
	"github.com/AssessHub-IN/portal-service/internal/utils"
	"github.com/AssessHub-IN/portal-service/internal/validator"
)

type PaymentHandler struct {
	BaseHandler
	paymentService services.PaymentService
	uploadDir      string
}

func NewPaymentHandler(paymentService services.PaymentService, logger utils.Logger, uploadDir string) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    NewBaseHandler(logger),
		paymentService: paymentService,
		uploadDir:      uploadDir,
	}
}

// CreateOrder opens a pending ledger entry for an exam or interview course
// @Summary Create payment order
// @Tags payments
// @Accept json
// @Produce json
// @Param request body services.CreateOrderRequest true "Order data"
// @Success 201 {object} services.CreateOrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /payments/create-order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	h.createOrder(c, "")
}

// CreateInterviewOrder is the interview-payments alias; the subject kind is
// pinned regardless of what the payload says.
func (h *PaymentHandler) CreateInterviewOrder(c *gin.Context) {
	h.createOrder(c, string(models.SubjectInterview))
}

func (h *PaymentHandler) createOrder(c *gin.Context, forcedKind string) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if forcedKind != "" {
		req.SubjectKind = forcedKind
	}

	// The payer defaults to the authenticated caller.
	if req.PayerID == 0 {
		if userID, err := GetUserIDFromContext(c); err == nil {
			req.PayerID = userID
		}
	}

	h.LogRequest(c, "Creating payment order",
		"subject_id", req.SubjectID,
		"subject_kind", req.SubjectKind,
		"payer_id", req.PayerID)

	order, err := h.paymentService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// UploadScreenshot receives the multipart proof for an order
// @Summary Upload payment proof
// @Tags payments
// @Accept multipart/form-data
// @Produce json
// @Param order_id formData string true "Order ID"
// @Param screenshot formData file true "Proof screenshot"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /payments/upload-screenshot [post]
func (h *PaymentHandler) UploadScreenshot(c *gin.Context) {
	var req validator.UploadProofRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Screenshot file is required",
		})
		return
	}

	if err := utils.ValidateProofFile(fileHeader); err != nil {
		status := http.StatusBadRequest
		msg := "Invalid screenshot file"
		if errors.Is(err, utils.ErrFileTooLarge) {
			msg = "Screenshot exceeds the maximum allowed size"
		}
		c.JSON(status, ErrorResponse{
			Message: msg,
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Uploading payment proof", "order_id", req.OrderID)

	path, err := utils.SaveProofFile(fileHeader, h.uploadDir, req.OrderID)
	if err != nil {
		if errors.Is(err, utils.ErrOrderIDUnsafe) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid order id",
				Details: err.Error(),
			})
			return
		}
		utils.RequestLogger(c, h.logger).Error("Failed to store proof file", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to store screenshot",
		})
		return
	}

	kind, _ := parseSubjectKind(req.SubjectKind)
	input := &services.UploadProofInput{
		OrderID:        req.OrderID,
		SubjectID:      req.SubjectID,
		SubjectKind:    kind,
		PayerID:        req.PayerID,
		ScreenshotPath: path,
		TransactionID:  req.TransactionID,
		UpiID:          req.UpiID,
	}

	if err := h.paymentService.UploadProof(c.Request.Context(), input); err != nil {
		// No ledger row references the stored file; remove it.
		if rmErr := os.Remove(filepath.Join(h.uploadDir, path)); rmErr != nil {
			utils.RequestLogger(c, h.logger).Warn("Failed to remove unreferenced proof file",
				"path", path, "error", rmErr)
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Proof uploaded, pending verification",
	})
}

// GetStatus returns the derived payment status for a (subject, payer) pair
// @Summary Get payment status
// @Tags payments
// @Produce json
// @Param subjectId path uint true "Subject ID"
// @Param payerId path uint true "Payer ID"
// @Param kind query string false "Subject kind (exam|interview, default exam)"
// @Success 200 {object} services.PaymentStatusResponse
// @Failure 400 {object} ErrorResponse
// @Router /payments/status/{subjectId}/{payerId} [get]
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	subjectID := h.parseIDParam(c, "subjectId")
	if subjectID == 0 {
		return
	}
	payerID := h.parseIDParam(c, "payerId")
	if payerID == 0 {
		return
	}

	kind, ok := parseSubjectKind(c.DefaultQuery("kind", string(models.SubjectExam)))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid kind parameter",
		})
		return
	}

	status, err := h.paymentService.GetStatus(c.Request.Context(), subjectID, kind, payerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// PollOrder returns the current status of a single order
// @Summary Poll order
// @Tags payments
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {object} services.PollOrderResponse
// @Failure 404 {object} ErrorResponse
// @Router /payments/poll/{orderId} [get]
func (h *PaymentHandler) PollOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid orderId parameter",
		})
		return
	}

	resp, err := h.paymentService.PollOrder(c.Request.Context(), orderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListPending lists entries awaiting verification
// @Summary List pending verifications
// @Tags payments
// @Produce json
// @Success 200 {object} services.PaymentListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/payments/pending [get]
func (h *PaymentHandler) ListPending(c *gin.Context) {
	filters := repositories.PaymentFilters{
		Limit:  parseQueryInt(c, "limit", 20),
		Offset: parseQueryInt(c, "offset", 0),
	}
	if kind, ok := parseSubjectKind(c.Query("kind")); ok {
		filters.SubjectKind = &kind
	}

	resp, err := h.paymentService.ListPending(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Approve completes a pending_verification entry
// @Summary Approve payment
// @Tags payments
// @Accept json
// @Produce json
// @Param request body validator.PaymentDecisionRequest true "Decision"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/payments/approve [post]
func (h *PaymentHandler) Approve(c *gin.Context) {
	req, actorID, ok := h.bindDecision(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Approving payment", "order_id", req.OrderID, "actor_id", actorID)

	if err := h.paymentService.Approve(c.Request.Context(), req.OrderID, req.Remarks, actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Payment approved",
	})
}

// Reject rejects a pending_verification entry with a reason
// @Summary Reject payment
// @Tags payments
// @Accept json
// @Produce json
// @Param request body validator.PaymentDecisionRequest true "Decision"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/payments/reject [post]
func (h *PaymentHandler) Reject(c *gin.Context) {
	req, actorID, ok := h.bindDecision(c)
	if !ok {
		return
	}

	if req.Remarks == nil || *req.Remarks == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Rejection requires remarks",
		})
		return
	}

	h.LogRequest(c, "Rejecting payment", "order_id", req.OrderID, "actor_id", actorID)

	if err := h.paymentService.Reject(c.Request.Context(), req.OrderID, *req.Remarks, actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Payment rejected",
	})
}

func (h *PaymentHandler) bindDecision(c *gin.Context) (*validator.PaymentDecisionRequest, uint, bool) {
	var req validator.PaymentDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return nil, 0, false
	}
	if req.OrderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "order_id is required",
		})
		return nil, 0, false
	}

	actorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return nil, 0, false
	}

	return &req, actorID, true
}

func parseSubjectKind(s string) (models.SubjectKind, bool) {
	switch models.SubjectKind(s) {
	case models.SubjectExam:
		return models.SubjectExam, true
	case models.SubjectInterview:
		return models.SubjectInterview, true
	default:
		return "", false
	}
}

func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
