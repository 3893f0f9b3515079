package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/examind-dev/examind-api/internal/config"
	"github.com/examind-dev/examind-api/internal/handler"
	"github.com/examind-dev/examind-api/internal/middleware"
	"github.com/examind-dev/examind-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	TenantHandler    *handler.TenantHandler
	SubjectHandler   *handler.SubjectHandler
	QuestionHandler  *handler.QuestionHandler
	CandidateHandler *handler.CandidateHandler
	ExamHandler      *handler.ExamHandler
	ProctorHandler   *handler.ProctorHandler
	ResultHandler    *handler.ResultHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Public result verification needs no credentials. Lookup is keyed by
	// the candidate's non-guessable public ID only.
	if deps.ResultHandler != nil {
		deps.ResultHandler.RegisterPublic(api.Group("/results"))
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Tenant administration
	admin := app.Group("/api/v1/admin", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin))
	if deps.TenantHandler != nil {
		deps.TenantHandler.Register(admin.Group("/tenant"))
	}
	if deps.SubjectHandler != nil {
		deps.SubjectHandler.Register(admin.Group("/subjects"))
	}
	if deps.QuestionHandler != nil {
		deps.QuestionHandler.Register(admin)
	}
	if deps.CandidateHandler != nil {
		deps.CandidateHandler.Register(admin.Group("/candidates"))
	}
	if deps.ProctorHandler != nil {
		deps.ProctorHandler.RegisterReview(admin.Group("/proctoring"))
	}
	if deps.ResultHandler != nil {
		deps.ResultHandler.RegisterTenant(admin.Group("/results"))
	}

	// Candidate exam surface
	exam := app.Group("/api/v1/exam", jwtMiddleware, middleware.RequireRole(middleware.RoleCandidate))
	if deps.ExamHandler != nil {
		deps.ExamHandler.Register(exam)
	}
	if deps.ProctorHandler != nil {
		deps.ProctorHandler.RegisterIngest(exam.Group("/proctoring"))
	}
}
