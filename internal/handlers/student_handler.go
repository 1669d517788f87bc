package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/services"
	"github.com/AssessHub-IN/portal-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	studentService services.StudentService
}

func NewStudentHandler(studentService services.StudentService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler:    NewBaseHandler(logger),
		studentService: studentService,
	}
}

// GetUnlocks returns the catalog annotated with the caller's payment state
// @Summary Get unlock status
// @Tags students
// @Produce json
// @Success 200 {array} services.UnlockItem
// @Failure 401 {object} ErrorResponse
// @Router /students/me/unlocks [get]
func (h *StudentHandler) GetUnlocks(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Getting student unlocks", "user_id", userID)

	items, err := h.studentService.Unlocks(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetMySubmissions lists the caller's exam submissions
// @Summary Get own submissions
// @Tags students
// @Produce json
// @Success 200 {object} services.SubmissionListResponse
// @Failure 401 {object} ErrorResponse
// @Router /students/me/submissions [get]
func (h *StudentHandler) GetMySubmissions(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := repositories.SubmissionFilters{
		Limit:  parseQueryInt(c, "limit", 20),
		Offset: parseQueryInt(c, "offset", 0),
	}

	resp, err := h.studentService.MySubmissions(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetMyScheduleRequests lists the caller's interview schedule requests
// @Summary Get own schedule requests
// @Tags students
// @Produce json
// @Success 200 {object} services.ScheduleListResponse
// @Failure 401 {object} ErrorResponse
// @Router /students/me/schedule-requests [get]
func (h *StudentHandler) GetMyScheduleRequests(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	filters := repositories.ScheduleFilters{
		Limit:  parseQueryInt(c, "limit", 20),
		Offset: parseQueryInt(c, "offset", 0),
	}

	resp, err := h.studentService.MyScheduleRequests(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
