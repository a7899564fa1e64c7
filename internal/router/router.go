package router

import (
	"net/http"
	"time"

	"github.com/Kolass2004/PrepmyExam-sub000/internal/config"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/handler"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/middleware"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/response"
	"github.com/Kolass2004/PrepmyExam-sub000/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Exam    *handler.ExamHandler
	Session *handler.SessionHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
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

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireUserJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireUserJWT(authService), handlers.Auth.GetProfile)
	}

	// ─── 2. API Group (JWT + Single Device) ────────────────────────────
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireUserJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		api.GET("/exams", handlers.Exam.ListExams)
		api.GET("/exams/:exam_id/paper", handlers.Exam.GetPaper)

		api.POST("/sessions/:exam_id/start", handlers.Session.Start)
		api.GET("/sessions/:exam_id", handlers.Session.GetState)
		api.POST("/sessions/:exam_id/select", handlers.Session.SelectOption)
		api.POST("/sessions/:exam_id/advance", handlers.Session.Advance)
		api.POST("/sessions/:exam_id/skip", handlers.Session.Skip)
		api.POST("/sessions/:exam_id/prev", handlers.Session.Prev)
		api.POST("/sessions/:exam_id/pause", handlers.Session.Pause)
		api.POST("/sessions/:exam_id/exit", handlers.Session.Exit)
		api.POST("/sessions/:exam_id/submit", handlers.Session.Submit)
		api.GET("/sessions/:exam_id/attempts", handlers.Session.ListAttempts)
	}

	// ─── 3. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUserWSAuth(authService))
	{
		ws.GET("/exams/:exam_id/session", handlers.WS.SessionStream)
	}

	return router
}
