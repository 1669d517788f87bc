package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/services"
	"github.com/AssessHub-IN/portal-service/internal/utils"
	"github.com/AssessHub-IN/portal-service/internal/validator"
)

type ScheduleHandler struct {
	BaseHandler
	scheduleService services.ScheduleService
}

func NewScheduleHandler(scheduleService services.ScheduleService, logger utils.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		BaseHandler:     NewBaseHandler(logger),
		scheduleService: scheduleService,
	}
}

// CreateRequest files a student's interview slot request
// @Summary Create schedule request
// @Tags interview-requests
// @Accept json
// @Produce json
// @Param request body services.CreateScheduleRequest true "Slot request"
// @Success 201 {object} models.InterviewScheduleRequest
// @Failure 403 {object} ErrorResponse
// @Router /interview-requests [post]
func (h *ScheduleHandler) CreateRequest(c *gin.Context) {
	var req services.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Creating schedule request", "course_id", req.CourseID, "student_id", userID)

	request, err := h.scheduleService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ListRequests lists schedule requests with optional filters
// @Summary List schedule requests
// @Tags interview-requests
// @Produce json
// @Success 200 {object} services.ScheduleListResponse
// @Router /interview-requests [get]
func (h *ScheduleHandler) ListRequests(c *gin.Context) {
	filters := repositories.ScheduleFilters{
		Limit:  parseQueryInt(c, "limit", 20),
		Offset: parseQueryInt(c, "offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ScheduleStatus(raw)
		filters.Status = &status
	}
	if courseID := parseQueryInt(c, "course_id", 0); courseID > 0 {
		id := uint(courseID)
		filters.CourseID = &id
	}

	resp, err := h.scheduleService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetRequest returns a single schedule request
// @Summary Get schedule request
// @Tags interview-requests
// @Produce json
// @Param id path uint true "Request ID"
// @Success 200 {object} models.InterviewScheduleRequest
// @Failure 404 {object} ErrorResponse
// @Router /interview-requests/{id} [get]
func (h *ScheduleHandler) GetRequest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}
	role, _ := GetUserRoleFromContext(c)

	request, err := h.scheduleService.Get(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// ApproveRequest moves a pending request to approved
// @Summary Approve schedule request
// @Tags interview-requests
// @Produce json
// @Param id path uint true "Request ID"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /interview-requests/{id}/approve [patch]
func (h *ScheduleHandler) ApproveRequest(c *gin.Context) {
	h.decide(c, "approve")
}

// RejectRequest moves a pending request to rejected
// @Summary Reject schedule request
// @Tags interview-requests
// @Accept json
// @Produce json
// @Param id path uint true "Request ID"
// @Param request body validator.ScheduleRejectRequest true "Rejection reason"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /interview-requests/{id}/reject [patch]
func (h *ScheduleHandler) RejectRequest(c *gin.Context) {
	h.decide(c, "reject")
}

// CompleteRequest marks a scheduled interview as held
// @Summary Complete schedule request
// @Tags interview-requests
// @Produce json
// @Param id path uint true "Request ID"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /interview-requests/{id}/complete [patch]
func (h *ScheduleHandler) CompleteRequest(c *gin.Context) {
	h.decide(c, "complete")
}

// CancelRequest cancels a request. Students can cancel their own pending
// requests; staff can cancel later stages too.
// @Summary Cancel schedule request
// @Tags interview-requests
// @Produce json
// @Param id path uint true "Request ID"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /interview-requests/{id}/cancel [patch]
func (h *ScheduleHandler) CancelRequest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}
	role, _ := GetUserRoleFromContext(c)

	h.LogRequest(c, "Cancelling schedule request", "request_id", id)

	if err := h.scheduleService.Cancel(c.Request.Context(), id, userID, role); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Request cancelled",
	})
}

// ScheduleRequest pins an approved request to a slot and interviewer
// @Summary Schedule interview
// @Tags interview-requests
// @Accept json
// @Produce json
// @Param id path uint true "Request ID"
// @Param request body services.AssignScheduleRequest true "Slot assignment"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /interview-requests/{id}/schedule [patch]
func (h *ScheduleHandler) ScheduleRequest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.AssignScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Scheduling interview", "request_id", id, "interviewer_id", req.InterviewerID)

	if err := h.scheduleService.Schedule(c.Request.Context(), id, &req, actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Interview scheduled",
	})
}

func (h *ScheduleHandler) decide(c *gin.Context, action string) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Deciding schedule request", "request_id", id, "action", action)

	var message string
	switch action {
	case "approve":
		err = h.scheduleService.Approve(c.Request.Context(), id, actorID)
		message = "Request approved"
	case "reject":
		var req validator.ScheduleRejectRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: bindErr.Error(),
			})
			return
		}
		err = h.scheduleService.Reject(c.Request.Context(), id, req.Reason, actorID)
		message = "Request rejected"
	case "complete":
		err = h.scheduleService.Complete(c.Request.Context(), id, actorID)
		message = "Request completed"
	}

	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: message,
	})
}
