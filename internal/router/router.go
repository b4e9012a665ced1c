package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cetlabs/cetexam-backend/internal/config"
	"github.com/cetlabs/cetexam-backend/internal/handler"
	"github.com/cetlabs/cetexam-backend/internal/middleware"
	"github.com/cetlabs/cetexam-backend/internal/response"
	"github.com/cetlabs/cetexam-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Category *handler.CategoryHandler
	Question *handler.QuestionHandler
	Exam     *handler.ExamHandler
	Result   *handler.ResultHandler
	Monitor  *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with their middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// CORS: restrict to the configured origins, or allow all in dev.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes: public, rate limited against credential stuffing.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// Authenticated routes shared by students and admins.
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		api.GET("/categories", handlers.Category.List)

		api.GET("/exams", handlers.Exam.List)
		api.GET("/exams/:exam_id", handlers.Exam.Get)
		api.GET("/exams/:exam_id/paper", handlers.Exam.Paper)
		api.POST("/exams/:exam_id/submit", handlers.Exam.Submit)

		api.GET("/results/:result_id", handlers.Result.Get)

		api.GET("/users/:user_id", handlers.User.Get)
		api.PUT("/users/:user_id", handlers.User.Update)
		api.GET("/users/:user_id/results", handlers.User.Results)
	}

	// Admin routes: content management and account administration.
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireAuth(authService), middleware.RequireAdmin())
	{
		admin.GET("/users", handlers.User.List)
		admin.POST("/users", handlers.User.Create)
		admin.DELETE("/users/:user_id", handlers.User.Delete)

		admin.POST("/categories", handlers.Category.Create)
		admin.PUT("/categories/:key", handlers.Category.Update)
		admin.DELETE("/categories/:key", handlers.Category.Delete)

		admin.GET("/questions", handlers.Question.List)
		admin.POST("/questions", handlers.Question.Create)
		admin.GET("/questions/:question_id", handlers.Question.Get)
		admin.PUT("/questions/:question_id", handlers.Question.Update)
		admin.DELETE("/questions/:question_id", handlers.Question.Delete)

		admin.POST("/exams", handlers.Exam.Create)
		admin.PUT("/exams/:exam_id", handlers.Exam.Update)
		admin.DELETE("/exams/:exam_id", handlers.Exam.Delete)
	}

	// WebSocket: live graded-result feed for admin dashboards. Browsers
	// cannot set headers on upgrade requests, so auth also accepts ?token=.
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAuth(authService), middleware.RequireAdmin())
	{
		ws.GET("/admin/results/stream", handlers.Monitor.ResultStream)
	}

	return router
}
