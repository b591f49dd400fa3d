package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devkichauhan/reliaquest/internal/employee/handler"
	"github.com/devkichauhan/reliaquest/internal/employee/metrics"
	"github.com/devkichauhan/reliaquest/internal/employee/service"
	"github.com/devkichauhan/reliaquest/internal/employee/tracer"
	"github.com/devkichauhan/reliaquest/internal/employee/upstream"
	"github.com/devkichauhan/reliaquest/internal/platform/config"
	"github.com/devkichauhan/reliaquest/internal/platform/health"
	request "github.com/devkichauhan/reliaquest/pkg/platform/middleware/request"
)

const (
	maxBodyBytes       = 64 << 10
	readinessDialLimit = 2 * time.Second
)

// RouterDeps are the pieces NewRouter mounts.
type RouterDeps struct {
	Employees      *handler.Handler
	Health         *health.Handler
	Latency        *request.Metrics
	MetricsHandler http.Handler
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(deps.Logger))
	r.Use(request.LatencyMiddleware(deps.Latency))

	deps.Health.Register(r)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(deps.RequestTimeout))
		r.Use(request.ContentTypeJSON)
		r.Use(request.BodyLimit(maxBodyBytes))
		deps.Employees.Register(r)
	})

	return r
}

// Build assembles the facade from configuration: upstream client, directory
// service, handlers and router. Collectors are registered on reg; a nil
// reg leaves them unregistered and disables /metrics.
func Build(cfg config.Server, logger *slog.Logger, reg *prometheus.Registry) (http.Handler, error) {
	var registerer prometheus.Registerer
	var metricsHandler http.Handler
	if reg != nil {
		registerer = reg
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	var tr tracer.Tracer = tracer.NewNoop()
	if cfg.TracingEnabled {
		tr = tracer.NewOTel()
	}

	employeeMetrics := metrics.New(registerer)
	client, err := upstream.New(cfg.UpstreamBaseURL,
		upstream.WithMetrics(employeeMetrics),
		upstream.WithTracer(tr),
	)
	if err != nil {
		return nil, err
	}

	svc, err := service.New(client,
		service.WithLogger(logger),
		service.WithMetrics(employeeMetrics),
	)
	if err != nil {
		return nil, err
	}

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("employee_upstream", health.TCPCheck(cfg.UpstreamBaseURL, readinessDialLimit))

	return NewRouter(RouterDeps{
		Employees:      handler.New(svc, logger),
		Health:         healthHandler,
		Latency:        request.NewMetrics(registerer),
		MetricsHandler: metricsHandler,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	}), nil
}
