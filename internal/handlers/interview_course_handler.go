package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AssessHub-IN/portal-service/internal/repositories"
	"github.com/AssessHub-IN/portal-service/internal/services"
	"github.com/AssessHub-IN/portal-service/internal/utils"
)

type InterviewCourseHandler struct {
	BaseHandler
	courseService     services.InterviewCourseService
	submissionService services.SubmissionService
}

func NewInterviewCourseHandler(courseService services.InterviewCourseService, submissionService services.SubmissionService, logger utils.Logger) *InterviewCourseHandler {
	return &InterviewCourseHandler{
		BaseHandler:       NewBaseHandler(logger),
		courseService:     courseService,
		submissionService: submissionService,
	}
}

// CreateCourse creates a new interview course
// @Summary Create interview course
// @Tags interview-courses
// @Accept json
// @Produce json
// @Param request body services.CreateCourseRequest true "Course data"
// @Success 201 {object} models.InterviewCourse
// @Failure 400 {object} ErrorResponse
// @Router /interview-courses [post]
func (h *InterviewCourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
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

	course, err := h.courseService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// ListCourses lists the interview-course catalog
// @Summary List interview courses
// @Tags interview-courses
// @Produce json
// @Success 200 {object} services.CourseListResponse
// @Router /interview-courses [get]
func (h *InterviewCourseHandler) ListCourses(c *gin.Context) {
	filters := repositories.CatalogFilters{
		Search: c.Query("search"),
		Limit:  parseQueryInt(c, "limit", 20),
		Offset: parseQueryInt(c, "offset", 0),
	}

	resp, err := h.courseService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCourse returns course detail with questions for paid students and staff
// @Summary Get interview course
// @Tags interview-courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.InterviewCourse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /interview-courses/{id} [get]
func (h *InterviewCourseHandler) GetCourse(c *gin.Context) {
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
	role, err := GetUserRoleFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Getting interview course detail", "course_id", id)

	course, err := h.courseService.GetDetail(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// UpdateCourse updates course metadata and optionally replaces its questions
// @Summary Update interview course
// @Tags interview-courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param request body services.UpdateCourseRequest true "Course update data"
// @Success 200 {object} models.InterviewCourse
// @Failure 404 {object} ErrorResponse
// @Router /interview-courses/{id} [put]
func (h *InterviewCourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCourseRequest
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

	h.LogRequest(c, "Updating interview course", "course_id", id)

	course, err := h.courseService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse removes a course and its questions
// @Summary Delete interview course
// @Tags interview-courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /interview-courses/{id} [delete]
func (h *InterviewCourseHandler) DeleteCourse(c *gin.Context) {
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

	h.LogRequest(c, "Deleting interview course", "course_id", id)

	if err := h.courseService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Interview course deleted",
	})
}

// SubmitAttempt records a completed practice attempt for a paid course
// @Summary Submit interview attempt
// @Tags interview-courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param request body services.SubmitInterviewRequest true "Responses"
// @Success 201 {object} models.InterviewAttempt
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /interview-courses/{id}/attempts [post]
func (h *InterviewCourseHandler) SubmitAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitInterviewRequest
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

	h.LogRequest(c, "Submitting interview attempt", "course_id", id, "user_id", userID)

	attempt, err := h.submissionService.SubmitInterview(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}
