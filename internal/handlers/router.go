package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/AssessHub-IN/portal-service/internal/models"
	"github.com/AssessHub-IN/portal-service/internal/services"
	"github.com/AssessHub-IN/portal-service/internal/utils"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	examHandler     *ExamHandler
	courseHandler   *InterviewCourseHandler
	paymentHandler  *PaymentHandler
	scheduleHandler *ScheduleHandler
	studentHandler  *StudentHandler
	userHandler     *UserHandler
	statsHandler    *StatsHandler
	authMiddleware  *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	tokens *utils.JWTManager,
	uploadDir string,
) *HandlerManager {
	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), logger),
		examHandler:     NewExamHandler(serviceManager.Exam(), serviceManager.Submission(), logger),
		courseHandler:   NewInterviewCourseHandler(serviceManager.InterviewCourse(), serviceManager.Submission(), logger),
		paymentHandler:  NewPaymentHandler(serviceManager.Payment(), logger, uploadDir),
		scheduleHandler: NewScheduleHandler(serviceManager.Schedule(), logger),
		studentHandler:  NewStudentHandler(serviceManager.Student(), logger),
		userHandler:     NewUserHandler(serviceManager.Auth(), logger),
		statsHandler:    NewStatsHandler(serviceManager.Stats(), logger),
		authMiddleware:  NewJWTAuthMiddleware(tokens),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	// Public auth endpoints
	auth := api.Group("/auth")
	{
		auth.POST("/send-otp", hm.authHandler.SendOTP)
		auth.POST("/register", hm.authHandler.Register)
		auth.POST("/login", hm.authHandler.Login)
		auth.GET("/profile", hm.authMiddleware.AuthMiddleware(), hm.authHandler.Profile)
	}

	// Catalog listing is public; detail and mutation require auth.
	exams := api.Group("/exams")
	{
		exams.GET("", hm.examHandler.ListExams)
		exams.GET("/:id", hm.authMiddleware.AuthMiddleware(), hm.examHandler.GetExam)
		exams.POST("/:id/submit", hm.authMiddleware.AuthMiddleware(), hm.examHandler.SubmitExam)

		exams.POST("", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.examHandler.CreateExam)
		exams.PUT("/:id", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.examHandler.UpdateExam)
		exams.DELETE("/:id", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.examHandler.DeleteExam)
	}

	courses := api.Group("/interview-courses")
	{
		courses.GET("", hm.courseHandler.ListCourses)
		courses.GET("/:id", hm.authMiddleware.AuthMiddleware(), hm.courseHandler.GetCourse)
		courses.POST("/:id/attempts", hm.authMiddleware.AuthMiddleware(), hm.courseHandler.SubmitAttempt)

		courses.POST("", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.courseHandler.CreateCourse)
		courses.PUT("/:id", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.courseHandler.UpdateCourse)
		courses.DELETE("/:id", hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.courseHandler.DeleteCourse)
	}

	// Payment surface: order creation needs a caller, the proof upload and
	// the status/poll reads stay unauthenticated for the payment page.
	payments := api.Group("/payments")
	{
		payments.POST("/create-order", hm.authMiddleware.AuthMiddleware(), hm.paymentHandler.CreateOrder)
		payments.POST("/upload-screenshot", hm.paymentHandler.UploadScreenshot)
		payments.GET("/status/:subjectId/:payerId", hm.paymentHandler.GetStatus)
		payments.GET("/poll/:orderId", hm.paymentHandler.PollOrder)
	}
	api.POST("/interview-payments/create-order", hm.authMiddleware.AuthMiddleware(), hm.paymentHandler.CreateInterviewOrder)

	// Interview scheduling
	requests := api.Group("/interview-requests")
	requests.Use(hm.authMiddleware.AuthMiddleware())
	{
		requests.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.scheduleHandler.CreateRequest)
		requests.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleHR), hm.scheduleHandler.ListRequests)
		requests.GET("/:id", hm.scheduleHandler.GetRequest)

		requests.PATCH("/:id/approve", hm.authMiddleware.RequireRoleMiddleware(models.RoleHR), hm.scheduleHandler.ApproveRequest)
		requests.PATCH("/:id/reject", hm.authMiddleware.RequireRoleMiddleware(models.RoleHR), hm.scheduleHandler.RejectRequest)
		requests.PATCH("/:id/schedule", hm.authMiddleware.RequireRoleMiddleware(models.RoleHR), hm.scheduleHandler.ScheduleRequest)
		requests.PATCH("/:id/complete", hm.authMiddleware.RequireRoleMiddleware(models.RoleHR), hm.scheduleHandler.CompleteRequest)
		requests.PATCH("/:id/cancel", hm.scheduleHandler.CancelRequest)
	}

	// Student portal views
	students := api.Group("/students/me")
	students.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
	{
		students.GET("/unlocks", hm.studentHandler.GetUnlocks)
		students.GET("/submissions", hm.studentHandler.GetMySubmissions)
		students.GET("/schedule-requests", hm.studentHandler.GetMyScheduleRequests)
	}
	api.GET("/submissions/me", hm.authMiddleware.AuthMiddleware(), hm.studentHandler.GetMySubmissions)

	// Admin surface
	admin := api.Group("/admin")
	admin.Use(hm.authMiddleware.AuthMiddleware())
	{
		adminPayments := admin.Group("/payments")
		adminPayments.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleHR))
		{
			adminPayments.GET("/pending", hm.paymentHandler.ListPending)
			adminPayments.POST("/approve", hm.paymentHandler.Approve)
			adminPayments.POST("/reject", hm.paymentHandler.Reject)
		}

		users := admin.Group("/users")
		users.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.POST("", hm.userHandler.CreateUser)
			users.DELETE("/:id", hm.userHandler.DeleteUser)
		}

		admin.GET("/stats", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleHR), hm.statsHandler.GetPortalStats)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "portal-service",
		})
	})
}
