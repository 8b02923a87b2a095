package interfaces

import "github.com/prometheus/client_golang/prometheus"

var (
	stepTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_step_transitions_total",
			Help: "Completed forward step transitions, labelled by target step.",
		},
		[]string{"step"},
	)

	ordersResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_orders_resolved_total",
			Help: "Checkouts that reached a resolved payment method.",
		},
		[]string{"method"},
	)

	gatewayFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_gateway_failures_total",
			Help: "Hosted checkout session requests that failed.",
		},
	)
)

func init() {
	prometheus.MustRegister(stepTransitions, ordersResolved, gatewayFailures)
}
