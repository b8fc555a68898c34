package metrics

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
			Name: "quiz_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route"},
	)

	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Verified submissions by result",
		},
		[]string{"result"},
	)

	SubmissionPersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quiz_submission_persist_failures_total",
		Help: "Submissions scored without an audit row",
	})

	IngestedQuestions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quiz_ingested_questions_total",
		Help: "Questions stored by ingestion",
	})

	IdentifierTruncations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quiz_identifier_truncations_total",
		Help: "Proofs whose identifiers exceeded 32 bytes",
	})
)

var registerOnce sync.Once

// Register adds every collector to reg. Subsequent calls are no-ops.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			RequestCounter,
			RequestDuration,
			Submissions,
			SubmissionPersistFailures,
			IngestedQuestions,
			IdentifierTruncations,
		)
	})
}

// ObserveSubmission counts a scored submission.
func ObserveSubmission(correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	Submissions.WithLabelValues(result).Inc()
}

func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
