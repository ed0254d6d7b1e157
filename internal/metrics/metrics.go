package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SendAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_sms_send_attempts_total",
			Help: "SMS send attempts by provider and outcome",
		},
		[]string{"provider", "outcome"}, // ok|config_error|transport_error|skipped
	)

	WebhookRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_webhook_rejections_total",
			Help: "Inbound webhooks rejected by the signature check",
		},
		[]string{"reason"},
	)

	DeliveryUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_delivery_updates_total",
			Help: "Delivery status updates applied by normalized status",
		},
		[]string{"status"},
	)

	CallStageTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_call_stage_transitions_total",
			Help: "Call session stage transitions by target stage",
		},
		[]string{"stage"},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		SendAttempts,
		WebhookRejections,
		DeliveryUpdates,
		CallStageTransitions,
	)
}
