package client

import (
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts and times every portal/video-server request.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the request collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "excalibur_portal_requests_total",
			Help: "Portal and video server requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "excalibur_portal_request_duration_seconds",
			Help:    "Round trip time of portal and video server requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

func (c *PortalClient) observe(req *resty.Request, status int, elapsed time.Duration, err error) {
	op := "unknown"
	if req != nil {
		if v, ok := req.Context().Value(operationKey{}).(string); ok {
			op = v
		}
	}

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "transport_error"
	case status != 200:
		outcome = "http_" + strconv.Itoa(status)
	}

	if c.Logger != nil {
		if err != nil {
			c.Logger.Debug("request failed", "op", op, "err", err)
		} else {
			method, target := "", ""
			if req != nil {
				method = req.Method
				if req.RawRequest != nil && req.RawRequest.URL != nil {
					target = req.RawRequest.URL.Host + req.RawRequest.URL.Path
				}
			}
			c.Logger.Debug("request", "op", op, "method", method, "url", target, "status", status, "duration", elapsed)
		}
	}

	if c.Metrics == nil {
		return
	}
	c.Metrics.Requests.WithLabelValues(op, outcome).Inc()
	if err == nil {
		c.Metrics.Duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
}
