// Package middleware provides the Echo middleware stack for the gamedealer API.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gamedealer/gamedealer/internal/metrics"
)

// probeGauges maps the health probe paths onto 0/1 gauges. Probes and the
// scrape endpoint itself stay out of the request histogram and counter:
// they fire every few seconds and would dominate the series without
// telling anyone anything about API traffic.
var probeGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics records per-request duration, count, and in-flight metrics,
// labelled by method, route, and status.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Prefer the route template so parameterized paths collapse
			// into one series.
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			if gauge, ok := probeGauges[path]; ok {
				err := next(c)
				if s := c.Response().Status; s >= 200 && s < 300 {
					gauge.Set(1)
				} else {
					gauge.Set(0)
				}
				return err
			}
			if path == "/metrics" {
				return next(c)
			}

			metrics.HTTPRequestsInFlight.Inc()
			start := time.Now()

			err := next(c)

			metrics.HTTPRequestsInFlight.Dec()

			labels := []string{
				c.Request().Method,
				path,
				strconv.Itoa(c.Response().Status),
			}
			metrics.HTTPRequestDuration.WithLabelValues(labels...).
				Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()

			return err
		}
	}
}
