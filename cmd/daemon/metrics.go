package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	receivedEnvelopes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirai_envelopes_received_total",
			Help: "Messages and events received from mirai-api-http, by type.",
		},
		[]string{"type"},
	)

	pumpErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mirai_pump_errors_total",
			Help: "Errors reported by the event source.",
		},
	)

	sentMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirai_messages_sent_total",
			Help: "Messages sent, by chat type and result.",
		},
		[]string{"chat_type", "result"},
	)
)

func init() {
	prometheus.MustRegister(receivedEnvelopes)
	prometheus.MustRegister(pumpErrors)
	prometheus.MustRegister(sentMessages)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
