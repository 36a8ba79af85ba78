package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts failed Redis commands by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tradepost_redis_errors_total",
	Help: "Total number of failed Redis commands",
}, []string{"command"})

var (
	promOnce sync.Once
	promHTTP *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the HTTP metrics collector for the service.
// Collectors register on the default registry once per process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promHTTP = fiberprometheus.NewWithRegistry(prometheus.DefaultRegisterer, serviceName, "tradepost", "http", nil)
	})
	return promHTTP
}

// MetricsMiddleware records request metrics, skipping the scrape endpoint itself.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return prom.Middleware(c)
	}
}

// ActiveWebSockets is the number of open WebSocket connections.
var ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "tradepost_websocket_connections_active",
	Help: "Number of currently open WebSocket connections",
})
