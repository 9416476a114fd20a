package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var providerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "agora_moderation_provider_duration_sec",
	Help: "Duration of moderation provider calls",
}, []string{"provider"})

var providerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "agora_moderation_provider_errors",
	Help: "Number of failed moderation provider calls",
}, []string{"provider", "kind"})

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "agora_moderation_cache_lookups",
	Help: "Classification cache lookups by outcome",
}, []string{"outcome"})

var decisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "agora_moderation_decisions",
	Help: "Publication decisions by resulting status",
}, []string{"status"})

var breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "agora_moderation_breaker_state",
	Help: "Provider circuit breaker state (0 closed, 1 half-open, 2 open)",
}, []string{"provider"})
