package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_validations_total",
		Help: "Session validations by reconciled status.",
	}, []string{"status"})

	cacheEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_token_cache_events_total",
		Help: "Token cache lookups by result.",
	}, []string{"result"})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authgate_rate_limited_total",
		Help: "Validation calls rejected by the rate limiter.",
	})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	loginRollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authgate_login_rollbacks_total",
		Help: "Record store records deleted after a failed client store write.",
	})

	logoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_logouts_total",
		Help: "Logout attempts by result.",
	}, []string{"result"})
)
