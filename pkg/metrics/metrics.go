package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "equipment_store"

// HTTP
var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Store
var (
	EquipmentCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "equipment_created_total",
		Help:      "Equipment units created, including imported ones",
	})

	AllocationsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocations_created_total",
		Help:      "Allocations opened",
	})

	AllocationsForceReturned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocations_force_returned_total",
		Help:      "Allocations closed because their unit went to repair or was marked non-functional",
	})

	LoginFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_failures_total",
		Help:      "Rejected login attempts",
	})
)

// Register adds every collector of the service to reg.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		RequestsTotal,
		RequestDuration,
		EquipmentCreated,
		AllocationsCreated,
		AllocationsForceReturned,
		LoginFailures,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
