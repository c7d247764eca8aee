package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "frontdesk"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of API requests by handler.",
		},
		[]string{"handler"},
	)

	availabilityComputed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_computed_total",
			Help:      "Count of availability matrices computed.",
		},
	)

	availabilityCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_cache_total",
			Help:      "Availability cache lookups by result.",
		},
		[]string{"result"},
	)

	recordsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Rows ignored by the availability core, by reason.",
		},
		[]string{"reason"},
	)

	reservationsSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_saved_total",
			Help:      "Reservation rows written, by operation.",
		},
		[]string{"op"},
	)

	kitchenNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kitchen_notifications_total",
			Help:      "Kitchen orders sent by channel and result.",
		},
		[]string{"channel", "result"},
	)

	sideEffectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Best-effort side effects that failed.",
		},
		[]string{"effect"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			availabilityComputed,
			availabilityCache,
			recordsSkipped,
			reservationsSaved,
			kitchenNotifications,
			sideEffectFailures,
		)
	})
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}

func IncAvailabilityComputed() {
	availabilityComputed.Inc()
}

func IncCache(result string) {
	availabilityCache.WithLabelValues(result).Inc()
}

// AddSkipped counts ignored rows; zero counts are not recorded.
func AddSkipped(reason string, n int) {
	if n <= 0 {
		return
	}
	recordsSkipped.WithLabelValues(reason).Add(float64(n))
}

func AddReservationsSaved(op string, n int) {
	reservationsSaved.WithLabelValues(op).Add(float64(n))
}

func IncKitchen(channel, result string) {
	kitchenNotifications.WithLabelValues(channel, result).Inc()
}

func IncSideEffectFailure(effect string) {
	sideEffectFailures.WithLabelValues(effect).Inc()
}
