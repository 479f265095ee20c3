package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/database"
	_ "github.com/lshigami/Caracal/docs" // Swagger docs - auto-generated
	"github.com/lshigami/Caracal/internal/controller/admin"
	"github.com/lshigami/Caracal/internal/controller/candidate"
	"github.com/lshigami/Caracal/internal/logger"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/lshigami/Caracal/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Caracal Assessment API
// @version 1.0
// @description Skill assessment platform: question bank, timed attempts, scoring, anti-cheat signals, reports and leaderboards.
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
			service.NewSystemClock,
		),

		// Repositories layer
		fx.Provide(
			repository.NewQuestionRepository,
			repository.NewAssessmentRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerRepository,
			repository.NewLeaderboardRepository,
		),

		// Services layer
		fx.Provide(
			service.NewBankService,
			service.NewGeneratorService,
			service.NewSandboxCodeRunner,
			service.NewScoringService,
			service.NewGeminiSimilarityService,
			service.NewAntiCheatService,
			service.NewReportService,
			service.NewLeaderboardService,
			service.NewAttemptService,
		),

		// API controllers layer
		fx.Provide(
			admin.NewAdminController,
			candidate.NewAttemptController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(StartAttemptReaper),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the HTTP
// server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminCtrl *admin.AdminController,
	attemptCtrl *candidate.AttemptController,
) {
	adminGroup := router.Group("/api/v1/admin")
	{
		adminGroup.POST("/questions", adminCtrl.CreateQuestion)
		adminGroup.GET("/questions", adminCtrl.ListQuestions)
		adminGroup.POST("/assessments", adminCtrl.CreateAssessment)
		adminGroup.GET("/assessments", adminCtrl.ListAssessments)
	}

	apiGroup := router.Group("/api/v1")
	{
		apiGroup.POST("/assessments/:assessment_id/attempts", attemptCtrl.StartAttempt)
		apiGroup.GET("/assessments/:assessment_id/my-attempts", attemptCtrl.GetMyAttempts)
		apiGroup.GET("/assessments/:assessment_id/leaderboard", attemptCtrl.GetLeaderboard)
		apiGroup.PUT("/attempts/:attempt_id/answers", attemptCtrl.RecordAnswer)
		apiGroup.POST("/attempts/:attempt_id/submit", attemptCtrl.SubmitAttempt)
		apiGroup.GET("/attempts/:attempt_id/report", attemptCtrl.GetReport)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Caracal assessment API starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

// StartAttemptReaper periodically submits attempts whose time window has
// elapsed, with whatever answers are recorded at that point.
func StartAttemptReaper(lc fx.Lifecycle, attemptService service.AttemptService) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ticker := time.NewTicker(15 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						attemptService.FinalizeExpired(ctx)
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Question{},
		&model.Assessment{},
		&model.Attempt{},
		&model.Answer{},
		&model.LeaderboardEntry{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
