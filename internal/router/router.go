// Package router builds the gin engine and mounts every API route.
package router

import (
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lshigami/vaikuntha/config"
	"github.com/lshigami/vaikuntha/internal/controller/admin"
	"github.com/lshigami/vaikuntha/internal/controller/user"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/middleware"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"
)

const APIPrefix = "/api/v1"

// Controllers is everything Register mounts.
type Controllers struct {
	fx.In

	Middleware *middleware.AuthMiddleware
	Auth       *user.AuthController
	Catalog    *user.CatalogController
	Learning   *user.LearningController
	Account    *user.AccountController
	Courses    *admin.CourseController
	Assessment *admin.AssessmentController
	Operations *admin.OperationsController
}

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags and reports field errors by
// their JSON names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Warn().Msg("gin validator engine is not go-playground/validator; custom tags disabled")
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
		if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return service.IsSlug(fl.Field().String())
		}); err != nil {
			log.Error().Err(err).Msg("Failed to register slug validator")
		}
	})
}

// NewEngine returns an engine with the global middleware chain, CORS,
// swagger, static uploads and the health check installed.
func NewEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	RegisterValidators()

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ProcessTime())
	r.Use(otelgin.Middleware(serviceName(cfg)))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.Use(cors.New(corsConfig(cfg.Cors.AllowedOrigins)))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy", Version: cfg.App.Version})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.Media.Driver == "local" && strings.HasPrefix(cfg.Media.PublicBaseURL, "/") && cfg.Media.LocalDir != "" {
		r.Static(cfg.Media.PublicBaseURL, cfg.Media.LocalDir)
	}

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "route not found", Code: "not_found"})
	})
	return r
}

func serviceName(cfg *config.Config) string {
	if cfg.Otel.ServiceName != "" {
		return cfg.Otel.ServiceName
	}
	return "vaikuntha-api"
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID, middleware.HeaderProcessTime},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			c.AllowCredentials = false
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}
	c.AllowOrigins = origins
	return c
}

// Register mounts the API under /api/v1.
func Register(r *gin.Engine, c Controllers) {
	api := r.Group(APIPrefix)
	required := c.Middleware.RequireAuth()
	optional := c.Middleware.OptionalAuth()
	staff := middleware.RequireRoles(model.RoleInstructor, model.RoleAdmin)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	auth := api.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.GET("/me", required, c.Auth.Me)
	}

	users := api.Group("/users", required)
	{
		users.GET("/:id", c.Auth.GetUser)
		users.PATCH("/:id", c.Auth.UpdateUser)
		users.GET("/:id/enrollments", c.Auth.ListEnrollments)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", optional, c.Catalog.ListCourses)
		courses.GET("/slug/:slug", optional, c.Catalog.GetCourseBySlug)
		courses.GET("/:id", optional, c.Catalog.GetCourse)
		courses.GET("/:id/sections", optional, c.Catalog.ListSections)
		courses.GET("/:id/reviews", c.Catalog.ListReviews)
		courses.POST("/:id/reviews", required, c.Catalog.CreateReview)
		courses.GET("/:id/live-sessions", required, c.Catalog.ListLiveSessions)

		courses.POST("", required, staff, c.Courses.CreateCourse)
		courses.PATCH("/:id", required, c.Courses.UpdateCourse)
		courses.DELETE("/:id", required, c.Courses.DeleteCourse)
	}

	sections := api.Group("/sections")
	{
		sections.GET("/:id/lectures", optional, c.Catalog.ListLectures)
		sections.POST("", required, c.Courses.CreateSection)
		sections.PATCH("/:id", required, c.Courses.UpdateSection)
		sections.DELETE("/:id", required, c.Courses.DeleteSection)
	}

	lectures := api.Group("/lectures", required)
	{
		lectures.POST("", c.Courses.CreateLecture)
		lectures.PATCH("/:id", c.Courses.UpdateLecture)
		lectures.DELETE("/:id", c.Courses.DeleteLecture)
	}

	enrollments := api.Group("/enrollments", required)
	{
		enrollments.POST("", c.Learning.Enroll)
		enrollments.GET("/:id/progress", c.Learning.GetProgress)
		enrollments.PATCH("/:id/progress", c.Learning.UpdateProgress)
	}

	quizzes := api.Group("/quizzes", required)
	{
		quizzes.POST("", c.Assessment.CreateQuiz)
		quizzes.GET("/:id", c.Learning.GetQuiz)
		quizzes.POST("/:id/submit", c.Learning.SubmitQuiz)
		quizzes.GET("/:id/submissions", c.Assessment.ListQuizSubmissions)
	}

	assignments := api.Group("/assignments", required)
	{
		assignments.POST("", c.Assessment.CreateAssignment)
		assignments.GET("/:id", c.Learning.GetAssignment)
		assignments.POST("/:id/submit", c.Learning.SubmitAssignment)
	}

	submissions := api.Group("/assignment-submissions", required)
	{
		submissions.PATCH("/:id/grade", c.Assessment.GradeSubmission)
		submissions.POST("/:id/ai-review", c.Assessment.SuggestFeedback)
	}

	live := api.Group("/live-sessions", required)
	{
		live.POST("", c.Operations.CreateLiveSession)
		live.GET("/upcoming", c.Learning.UpcomingLiveSessions)
		live.POST("/:id/join", c.Learning.JoinLiveSession)
	}

	payments := api.Group("/payments")
	{
		payments.POST("/create-intent", required, c.Account.CreatePaymentIntent)
		payments.GET("/history", required, c.Account.PaymentHistory)
		payments.POST("/notifications", c.Account.PaymentNotification)
	}

	support := api.Group("/support/tickets", required)
	{
		support.POST("", c.Account.CreateTicket)
		support.GET("", c.Account.ListTickets)
		support.GET("/:id", c.Account.GetTicket)
		support.POST("/:id/respond", c.Account.RespondTicket)
		support.PATCH("/:id", adminOnly, c.Operations.UpdateTicket)
	}

	certificates := api.Group("/certificates")
	{
		certificates.GET("/verify/:code", c.Learning.VerifyCertificate)
		certificates.GET("/:course_id", required, c.Learning.GetCertificate)
	}

	notifications := api.Group("/notifications", required)
	{
		notifications.GET("", c.Account.ListNotifications)
		notifications.PATCH("/:id/read", c.Account.MarkNotificationRead)
	}

	api.POST("/media/upload", required, c.Account.UploadMedia)

	videos := api.Group("/bunny", required, staff)
	{
		videos.POST("/create-video", c.Operations.CreateVideo)
		videos.GET("/get-video/:id", c.Operations.GetVideo)
	}
}
