package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/comandero-software/comandero/internal/api/docs"
	"github.com/comandero-software/comandero/internal/api/handler"
	"github.com/comandero-software/comandero/internal/api/middleware"
	"github.com/comandero-software/comandero/internal/auth"
	"github.com/comandero-software/comandero/internal/authz"
	"github.com/comandero-software/comandero/internal/config"
	"github.com/comandero-software/comandero/internal/repository"
	"github.com/comandero-software/comandero/internal/service"
	"github.com/comandero-software/comandero/internal/webhook"
	"github.com/comandero-software/comandero/internal/ws"
)

type Dependencies struct {
	OrderRepo        repository.OrderRepositoryInterface
	StaffRepo        repository.StaffRepositoryInterface
	CustomerRepo     repository.CustomerRepositoryInterface
	StaffSessionRepo repository.StaffSessionRepositoryInterface
	RestaurantRepo   repository.RestaurantRepositoryInterface
	StaffRealm       *auth.StaffRealm
	CustomerRealm    *auth.CustomerRealm
	DB               *pgxpool.Pool
	Config           *config.Config
}

type Router struct {
	app            *fiber.App
	logger         *slog.Logger
	deps           *Dependencies
	rateLimiter    *middleware.RateLimiter
	wsHub          *ws.Hub
	webhookWorker  *webhook.Worker
	activityWorker *middleware.SessionActivityWorker
	cancelWorker   context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Comandero",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: false,
	}))

	// Session resolution runs on every request. It never rejects: an
	// unresolvable cookie just yields the anonymous principal, and the
	// gate decides what that principal may reach.
	resolver := auth.NewResolver(r.deps.StaffRealm, r.deps.CustomerRealm, r.logger)
	r.app.Use(middleware.Session(resolver))
	r.app.Use(middleware.Gate(authz.DefaultPolicy()))

	// Swagger documentation (public)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	healthHandler := handler.NewHealthHandler(r.deps.DB)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// WebSocket hub plus webhook fan-out share one publisher so order
	// mutations broadcast to connected clients and external integrations
	// through a single seam.
	r.wsHub = ws.NewHub(r.logger)
	webhookService := webhook.NewService(r.deps.DB)
	publisher := ws.Fanout(
		ws.NewPublisher(r.wsHub, r.logger),
		webhook.NewNotifier(webhookService, r.logger),
	)

	r.webhookWorker = webhook.NewWorker(r.deps.DB, webhookService, r.logger)
	workerCtx, cancel := context.WithCancel(context.Background())
	r.cancelWorker = cancel
	go r.webhookWorker.Run(workerCtx)

	// Debounced last-active writer for staff sessions
	r.activityWorker = middleware.NewSessionActivityWorker(
		r.deps.StaffSessionRepo,
		r.logger,
		middleware.SessionActivityWorkerConfig{},
	)
	r.activityWorker.Start()

	authService := service.NewAuthService(
		r.deps.StaffRepo,
		r.deps.CustomerRepo,
		r.deps.RestaurantRepo,
		r.deps.StaffRealm,
		r.deps.CustomerRealm,
		r.activityWorker,
		r.logger,
	)
	orderService := service.NewOrderService(r.deps.OrderRepo, publisher, r.logger)

	authHandler := handler.NewAuthHandler(
		authService,
		r.deps.Config.StaffSessionTTL,
		r.deps.Config.CustomerSessionTTL,
		r.deps.Config.IsProduction(),
		r.logger,
	)
	orderHandler := handler.NewOrderHandler(orderService, r.logger)
	webhookHandler := handler.NewWebhookHandler(webhookService, r.logger)
	pagesHandler := handler.NewPagesHandler()

	// Page shells
	r.app.Get("/", pagesHandler.Landing)
	r.app.Get("/auth/login", pagesHandler.StaffLogin)
	r.app.Get("/dashboard", pagesHandler.Dashboard)
	r.app.Get("/dashboard/*", pagesHandler.Dashboard)
	r.app.Get("/customer", pagesHandler.CustomerHome)
	r.app.Get("/customer/login", pagesHandler.CustomerLogin)
	r.app.Get("/customer/register", pagesHandler.CustomerRegister)

	// API routes, rate limited per principal
	api := r.app.Group("/api")
	r.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	api.Use(r.rateLimiter.Handler())

	api.Post("/auth/login", authHandler.StaffLogin)
	api.Post("/auth/logout", authHandler.StaffLogout)
	api.Post("/auth/sessions/track", authHandler.TrackSession)
	api.Get("/auth/two-factor/status", authHandler.TwoFactorStatus)
	api.Post("/auth/customer/signout", authHandler.CustomerSignout)
	api.Post("/customer/register", authHandler.CustomerRegister)
	api.Post("/customer/login", authHandler.CustomerLogin)

	api.Post("/orders", orderHandler.Create)
	api.Get("/orders", orderHandler.List)
	api.Get("/orders/:id", orderHandler.Get)
	api.Patch("/orders/:id/status", orderHandler.UpdateStatus)

	api.Get("/webhooks", webhookHandler.List)
	api.Post("/webhooks", webhookHandler.Create)
	api.Delete("/webhooks/:id", webhookHandler.Delete)

	// WebSocket endpoint
	api.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.wsHub, r.logger))
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop webhook delivery worker
	if r.cancelWorker != nil {
		r.cancelWorker()
	}

	// Flush and stop the session activity worker
	if r.activityWorker != nil {
		r.activityWorker.Stop()
	}

	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
