package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/examind-dev/examind-api/internal/config"
	"github.com/examind-dev/examind-api/internal/database"
	"github.com/examind-dev/examind-api/internal/handler"
	"github.com/examind-dev/examind-api/internal/middleware"
	"github.com/examind-dev/examind-api/internal/models"
	"github.com/examind-dev/examind-api/internal/repository"
	"github.com/examind-dev/examind-api/internal/router"
	"github.com/examind-dev/examind-api/internal/service"
	"github.com/examind-dev/examind-api/pkg/framestore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Subject{},
		&models.Question{},
		&models.Candidate{},
		&models.Session{},
		&models.ProctorEvent{},
		&models.Result{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// NATS is optional. Without it the change signal still fans out over
	// redis pub/sub.
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	frames, err := framestore.New(framestore.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create frame store: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	tenantRepo := repository.NewTenantRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	proctorEventRepo := repository.NewProctorEventRepository(db)
	resultRepo := repository.NewResultRepository(db)

	signaler := service.NewChangeSignaler(redisClient, natsConn, cfg.SignalChannelBase, logger)

	tenantService := service.NewTenantService(tenantRepo, logger)
	subjectService := service.NewSubjectService(subjectRepo, tenantService, validate, logger)
	questionService := service.NewQuestionService(questionRepo, subjectRepo, tenantService, validate, logger)
	candidateService := service.NewCandidateService(candidateRepo, subjectRepo, tenantService, validate, logger)
	examService := service.NewExamService(sessionRepo, candidateRepo, subjectRepo, questionRepo, signaler, validate, logger)
	proctorService := service.NewProctorService(proctorEventRepo, sessionRepo, tenantService, frames, signaler, validate, cfg.FrameUploadTimeout, logger)
	resultService := service.NewResultService(resultRepo, questionRepo, tenantService, redisClient, cfg.SignalChannelBase, cfg.ResultsCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		TenantHandler:    handler.NewTenantHandler(tenantService, logger),
		SubjectHandler:   handler.NewSubjectHandler(subjectService, logger),
		QuestionHandler:  handler.NewQuestionHandler(questionService, logger),
		CandidateHandler: handler.NewCandidateHandler(candidateService, logger),
		ExamHandler:      handler.NewExamHandler(examService, logger),
		ProctorHandler:   handler.NewProctorHandler(proctorService, logger),
		ResultHandler:    handler.NewResultHandler(resultService, logger),
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
