package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garageadmin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "garageadmin_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GarageReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garageadmin_garage_reviews_total",
			Help: "Total number of garage review decisions",
		},
		[]string{"decision"},
	)

	GarageSignupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "garageadmin_garage_signups_total",
			Help: "Total number of garage signups",
		},
	)

	SubscriptionsRequestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garageadmin_subscriptions_requested_total",
			Help: "Total number of subscription requests by plan type",
		},
		[]string{"type"},
	)

	PlanChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garageadmin_plan_changes_total",
			Help: "Total number of plan create/update/delete operations",
		},
		[]string{"op"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garageadmin_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "garageadmin_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	ExpiringGarages = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "garageadmin_expiring_garages",
			Help: "Garages per expiry band at the last tracker run",
		},
		[]string{"band"},
	)

	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garageadmin_login_attempts_total",
			Help: "Admin login attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordReview(decision string) {
	GarageReviewsTotal.WithLabelValues(decision).Inc()
}

func RecordSignup() {
	GarageSignupsTotal.Inc()
}

func RecordSubscriptionRequest(subType string) {
	SubscriptionsRequestedTotal.WithLabelValues(subType).Inc()
}

func RecordPlanChange(op string) {
	PlanChangesTotal.WithLabelValues(op).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func SetEmailQueueLength(n int64) {
	EmailQueueLength.Set(float64(n))
}

func SetExpiringGarages(band string, n int) {
	ExpiringGarages.WithLabelValues(band).Set(float64(n))
}

func RecordLogin(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}
