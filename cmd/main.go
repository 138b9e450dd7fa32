package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/vaikuntha/config"
	"github.com/lshigami/vaikuntha/database"
	_ "github.com/lshigami/vaikuntha/docs"
	adminctrl "github.com/lshigami/vaikuntha/internal/controller/admin"
	userctrl "github.com/lshigami/vaikuntha/internal/controller/user"
	"github.com/lshigami/vaikuntha/internal/logger"
	"github.com/lshigami/vaikuntha/internal/middleware"
	"github.com/lshigami/vaikuntha/internal/platform/bunny"
	"github.com/lshigami/vaikuntha/internal/platform/cache"
	"github.com/lshigami/vaikuntha/internal/platform/certificate"
	"github.com/lshigami/vaikuntha/internal/platform/payment"
	"github.com/lshigami/vaikuntha/internal/platform/storage"
	"github.com/lshigami/vaikuntha/internal/platform/tracing"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/lshigami/vaikuntha/internal/router"
	"github.com/lshigami/vaikuntha/internal/service"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Vaikuntha Learning Platform API
// @version 1.0
// @description Online learning platform: courses, curriculum, enrollments, quizzes, assignments, payments, live sessions, certificates and support.
// @contact.name API Support
// @contact.email support@example.com
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV") != "production")

	app := fx.New(
		// Core
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewCache,
			NewStore,
			payment.New,
			fx.Annotate(bunny.New, fx.As(new(service.VideoProvider))),
			fx.Annotate(certificate.NewRenderer, fx.As(new(service.CertificateRenderer))),
			service.NewGeminiReviewer,
			NewGinEngine,
		),

		// Repositories
		fx.Provide(
			repository.NewUserRepository,
			repository.NewCourseRepository,
			repository.NewSectionRepository,
			repository.NewLectureRepository,
			repository.NewEnrollmentRepository,
			repository.NewProgressRepository,
			repository.NewQuizRepository,
			repository.NewQuizSubmissionRepository,
			repository.NewAssignmentRepository,
			repository.NewReviewRepository,
			repository.NewPaymentRepository,
			repository.NewLiveSessionRepository,
			repository.NewCertificateRepository,
			repository.NewNotificationRepository,
			repository.NewSupportRepository,
		),

		// Services
		fx.Provide(
			service.NewCourseCache,
			service.NewNotificationService,
			service.NewAuthService,
			service.NewUserService,
			service.NewCourseService,
			service.NewCurriculumService,
			service.NewEnrollmentService,
			service.NewQuizService,
			service.NewAssignmentService,
			service.NewReviewService,
			service.NewPaymentService,
			service.NewLiveSessionService,
			service.NewSupportService,
			service.NewCertificateService,
			service.NewMediaService,
			service.NewVideoService,
		),

		// Controllers
		fx.Provide(
			middleware.NewAuthMiddleware,
			userctrl.NewAuthController,
			userctrl.NewCatalogController,
			userctrl.NewLearningController,
			userctrl.NewAccountController,
			adminctrl.NewCourseController,
			adminctrl.NewAssessmentController,
			adminctrl.NewOperationsController,
		),

		fx.Invoke(ConfigureLogger),
		fx.Invoke(StartTracing),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// ConfigureLogger applies the configured level and format once config is loaded.
func ConfigureLogger(cfg *config.Config) {
	logger.Init(cfg.App.LogLevel, !cfg.IsProduction())
}

func StartTracing(lc fx.Lifecycle, cfg *config.Config) error {
	shutdown, err := tracing.Init(context.Background(), cfg)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return shutdown(ctx) }})
	return nil
}

// NewCache falls back to the no-op cache when redis is unreachable; the
// course cache is an optimisation only.
func NewCache(lc fx.Lifecycle, cfg *config.Config) cache.Cache {
	c, err := cache.New(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, course cache disabled")
		return cache.Noop{}
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return c.Close() }})
	return c
}

func NewStore(lc fx.Lifecycle, cfg *config.Config) (storage.Store, error) {
	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return store.Close() }})
	return store, nil
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	return router.NewEngine(cfg)
}

// RegisterRoutesAndStartServer mounts the API and ties the HTTP server to the app lifecycle.
func RegisterRoutesAndStartServer(lc fx.Lifecycle, engine *gin.Engine, cfg *config.Config, controllers router.Controllers) {
	router.Register(engine, controllers)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Vaikuntha API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
