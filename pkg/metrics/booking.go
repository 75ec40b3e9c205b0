package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CouponMetrics counts coupon validate/reserve attempts by outcome.
type CouponMetrics struct {
	attempts *prometheus.CounterVec
}

// NewCouponMetrics registers the coupon metrics on the provided registerer.
func NewCouponMetrics(reg prometheus.Registerer) *CouponMetrics {
	if reg == nil {
		return &CouponMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_attempts_total",
		Help: "Coupon validate and reserve attempts by result and reason.",
	}, []string{"operation", "result", "reason"})
	reg.MustRegister(attempts)
	return &CouponMetrics{attempts: attempts}
}

// ObserveAttempt increments the attempt counter.
func (c *CouponMetrics) ObserveAttempt(operation, result, reason string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(operation), normalizeLabel(result), normalizeLabel(reason)).Inc()
}

// SearchMetrics records availability search outcomes and latency.
type SearchMetrics struct {
	requests *prometheus.CounterVec
	offers   prometheus.Histogram
	duration *prometheus.HistogramVec
}

// NewSearchMetrics registers the search metrics on the provided registerer.
func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	if reg == nil {
		return &SearchMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_search_total",
		Help: "Availability searches by outcome.",
	}, []string{"outcome"})
	offers := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "availability_search_offers",
		Help:    "Offers returned per successful search.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "availability_search_duration_seconds",
		Help:    "Duration of availability searches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(requests, offers, duration)
	return &SearchMetrics{requests: requests, offers: offers, duration: duration}
}

// ObserveSearch records one search.
func (s *SearchMetrics) ObserveSearch(outcome string, offers int, elapsed time.Duration) {
	if s == nil || s.requests == nil {
		return
	}
	label := normalizeLabel(outcome)
	s.requests.WithLabelValues(label).Inc()
	s.duration.WithLabelValues(label).Observe(elapsed.Seconds())
	if offers > 0 {
		s.offers.Observe(float64(offers))
	}
}
