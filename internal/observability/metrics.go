package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreatedTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carpool", Name: "rides_created_total", Help: "Total rides created"})
	RidesStartedTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carpool", Name: "rides_started_total", Help: "Total rides started"})
	RidesFinishedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carpool", Name: "rides_finished_total", Help: "Total rides finished"})
	RidesCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carpool", Name: "rides_cancelled_total", Help: "Total rides cancelled"})

	SeatRequestsTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carpool", Name: "seat_requests_total", Help: "Total passenger seat requests"})
	SeatApprovalsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carpool", Name: "seat_approvals_total", Help: "Total passenger approvals"})

	PreconditionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "carpool", Name: "precondition_failures_total", Help: "Lifecycle operations rejected on a precondition"},
		[]string{"code"},
	)

	BroadcastsTotal      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carpool", Name: "broadcasts_total", Help: "Index mutations fanned out to subscribers"})
	SubscribersConnected = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "carpool", Name: "subscribers_connected", Help: "Currently connected ride subscribers"})
	ActiveRidesIndexed   = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "carpool", Name: "active_rides_indexed", Help: "Rides currently held in the active ride index"})
)
