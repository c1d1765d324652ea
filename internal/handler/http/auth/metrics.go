package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authDecisionsTotal counts admin authorization decisions.
	authDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_auth_decisions_total",
			Help: "Admin endpoint authorization decisions by result",
		},
		[]string{"result"}, // result: allowed | unauthorized | forbidden | disabled
	)

	// tokensIssuedTotal counts tokens minted by role.
	tokensIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_tokens_issued_total",
			Help: "Tokens issued by role",
		},
		[]string{"role"},
	)
)

func recordDecision(result string) {
	authDecisionsTotal.WithLabelValues(result).Inc()
}
