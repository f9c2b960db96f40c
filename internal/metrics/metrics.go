package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters for the booking API.
type Metrics struct {
	requests *prometheus.CounterVec
	bookings *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code",
		}, []string{"method", "route", "status"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "api",
			Name:      "appointment_events_total",
			Help:      "Appointment bookings and cancellations by outcome",
		}, []string{"event", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requests, m.bookings)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, statusClass(status)).Inc()
}

// ObserveAppointment counts a "booked" or "cancelled" event with its outcome.
func (m *Metrics) ObserveAppointment(event, outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(event, outcome).Inc()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
