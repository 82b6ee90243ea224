package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blogspace/patientzero/internal/config"
	"github.com/blogspace/patientzero/internal/database"
	"github.com/blogspace/patientzero/internal/handlers"
	"github.com/blogspace/patientzero/internal/middleware"
)

// HealthChecker reports backing service status for /health.
type HealthChecker interface {
	Health() map[string]string
}

type Server struct {
	cfg     *config.Config
	db      HealthChecker
	handler *handlers.Handler
	tokens  *middleware.TokenManager
	limiter *middleware.RateLimiter
}

// NewServer wires the router and returns the HTTP server plus the rate
// limiter, which the caller stops on shutdown.
func NewServer(cfg *config.Config, db database.Service, handler *handlers.Handler, tokens *middleware.TokenManager) (*http.Server, *middleware.RateLimiter) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	newServer := &Server{
		cfg:     cfg,
		db:      db,
		handler: handler,
		tokens:  tokens,
		limiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler:      newServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server, newServer.limiter
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	allowAll := len(s.cfg.CORSAllowedOrigins) == 0 ||
		(len(s.cfg.CORSAllowedOrigins) == 1 && s.cfg.CORSAllowedOrigins[0] == "*")
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if allowAll {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.cfg.CORSAllowedOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/signup", s.handler.Auth.Signup)
		api.POST("/login", s.handler.Auth.Login)
		api.POST("/token", s.handler.Auth.Token)
		api.POST("/logout", s.handler.Auth.Logout)

		// Post routes (public reads)
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/search", s.handler.Post.SearchPosts)
		api.GET("/posts/:id", s.handler.Post.GetPost)

		// Comment routes (public reads)
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)

		// User routes (public reads)
		api.GET("/users/:username", s.handler.User.GetUserProfile)
		api.GET("/users/:username/stats", s.handler.User.GetUserStats)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.tokens))
		{
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)
			protected.POST("/posts/:id/vote", s.handler.Post.VotePost)

			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)
			protected.DELETE("/comments/:id", s.handler.Comment.DeleteComment)
			protected.POST("/comments/:id/vote", s.handler.Comment.VoteComment)

			protected.PUT("/users/:username", s.handler.User.UpdateUserProfile)

			protected.GET("/health/profile/:username", s.handler.Health.GetProfile)
			protected.POST("/health/profile", s.handler.Health.UpsertProfile)

			// LLM-backed routes are rate limited per client IP
			limited := protected.Group("", s.limiter.Middleware())
			limited.GET("/health/recommendations/:username", s.handler.Health.GetRecommendations)
			limited.POST("/health/analyze", s.handler.Health.AnalyzeStatus)
		}
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	db := s.db.Health()
	status := http.StatusOK
	if db["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": statusText(status), "database": db})
}

func statusText(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
