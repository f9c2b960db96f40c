package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest("GET", "/api/doctors", 200)
	m.ObserveRequest("GET", "/api/doctors", 204)
	m.ObserveRequest("POST", "/auth/login", 401)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/doctors", "2xx")); got != 2 {
		t.Fatalf("2xx count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/auth/login", "4xx")); got != 1 {
		t.Fatalf("4xx count = %v, want 1", got)
	}
}

func TestObserveAppointment(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveAppointment("booked", "ok")
	m.ObserveAppointment("booked", "conflict")
	m.ObserveAppointment("booked", "ok")

	if got := testutil.ToFloat64(m.bookings.WithLabelValues("booked", "ok")); got != 2 {
		t.Fatalf("booked ok = %v, want 2", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200)
	m.ObserveAppointment("cancelled", "ok")
}
