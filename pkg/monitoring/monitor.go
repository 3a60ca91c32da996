package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grading_submissions_total",
			Help: "Grade requests by outcome",
		},
		[]string{"outcome"},
	)

	LessonScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "grading_lesson_score",
			Help:    "Normalized lesson scores of accepted submissions",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	GradingAnomalies = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grading_anomalies_total",
			Help: "Submissions graded against a lesson without questions",
		},
	)

	EnrollmentChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrollment_changes_total",
			Help: "Enroll and unenroll operations that committed",
		},
		[]string{"op"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			SubmissionCounter,
			LessonScore,
			GradingAnomalies,
			EnrollmentChanges,
		)
	})
}

// ObserveGrade records the outcome label and, for accepted submissions, the score.
func ObserveGrade(outcome string, score float64, anomaly bool) {
	SubmissionCounter.WithLabelValues(outcome).Inc()
	if outcome != "accepted" {
		return
	}
	LessonScore.Observe(score)
	if anomaly {
		GradingAnomalies.Inc()
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
