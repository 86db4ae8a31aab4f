package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/chat"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/config"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/crisis"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/escalation"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/metrics"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/provider"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/realtime"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/webhook"
)

type Dependencies struct {
	Config       *config.Config
	ChatProvider provider.ChatProvider
	// Registry receives the realtime collectors and backs /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	bus         *realtime.Bus
	rateLimiter *middleware.RateLimiter

	webhookWorker *webhook.Worker
	cancelWorker  context.CancelFunc

	// streamCtx is cancelled at shutdown so open streams return.
	streamCtx     context.Context
	cancelStreams context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Soukhyam Realtime",
	})

	streamCtx, cancel := context.WithCancel(context.Background())

	return &Router{
		app:           app,
		logger:        logger,
		deps:          deps,
		streamCtx:     streamCtx,
		cancelStreams: cancel,
	}
}

func (r *Router) Setup() {
	cfg := r.deps.Config
	reg := r.deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Cache-Control",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Realtime core
	realtimeMetrics := metrics.NewRealtime(reg)
	r.bus = realtime.NewBus(
		realtime.WithSubscriberBuffer(cfg.SubscriberBuffer),
		realtime.WithMetrics(realtimeMetrics),
		realtime.WithLogger(r.logger),
	)
	stream := realtime.NewStream(r.bus, cfg.HeartbeatInterval, r.logger, realtimeMetrics)
	ingest := realtime.NewIngest(r.bus, r.logger)

	// Escalation, with optional webhook paging
	coordinatorOpts := []escalation.Option{
		escalation.WithPublishTimeout(cfg.AlertPublishTimeout),
		escalation.WithMetrics(realtimeMetrics),
	}
	if cfg.EscalationWebhookURL != "" {
		webhookService := webhook.NewService(webhook.Target{
			URL:    cfg.EscalationWebhookURL,
			Secret: cfg.EscalationWebhookSecret,
		})
		r.webhookWorker = webhook.NewWorker(webhookService, r.logger, 0)

		ctx, cancel := context.WithCancel(context.Background())
		r.cancelWorker = cancel
		go r.webhookWorker.Run(ctx)

		coordinatorOpts = append(coordinatorOpts,
			escalation.WithNotifier(escalation.NewNotifier(webhookService, r.logger)))
	}
	coordinator := escalation.NewCoordinator(ingest, r.logger, coordinatorOpts...)

	detector := crisis.NewDetector(cfg.HelplineNumber)
	chatService := chat.NewService(detector, coordinator, r.deps.ChatProvider, r.logger)

	// Probes and metrics
	healthHandler := handler.NewHealthHandler(r.bus, r.deps.ChatProvider.Name())
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Per-client limit on every route that writes
	r.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Max:    cfg.RateLimitMax,
		Window: cfg.RateLimitWindow,
	})
	limit := r.rateLimiter.Handler()

	v1 := r.app.Group("/v1")

	realtimeHandler := handler.NewRealtimeHandler(r.streamCtx, stream, ingest, r.logger)
	v1.Get("/realtime/stream", realtimeHandler.Stream)
	v1.Post("/realtime/events", limit, realtimeHandler.Publish)

	chatHandler := handler.NewChatHandler(chatService)
	v1.Post("/chat", limit, chatHandler.Respond)

	alertHandler := handler.NewAlertHandler(coordinator, r.logger)
	v1.Get("/alerts", alertHandler.List)
	v1.Post("/alerts", limit, alertHandler.Trigger)
	v1.Post("/alerts/:id/acknowledge", alertHandler.Acknowledge)
	v1.Post("/alerts/:id/resolve", alertHandler.Resolve)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Drop every subscriber first so open streams return
	if r.bus != nil {
		r.bus.Close()
	}
	r.cancelStreams()

	// Stop webhook worker
	if r.cancelWorker != nil {
		r.cancelWorker()
	}

	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
