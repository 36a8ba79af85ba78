package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TranslationResults counts translations by the provider that produced them
	// ("identity", "dictionary", "gemini", "placeholder", ...).
	TranslationResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradepost_translation_results_total",
		Help: "Total number of translations served, by producing provider",
	}, []string{"provider"})

	// TranslationProviderFailures counts provider attempts that yielded no result.
	TranslationProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradepost_translation_provider_misses_total",
		Help: "Total number of provider attempts that produced no translation",
	}, []string{"provider"})

	// MarketplaceEvents counts domain events by type and delivery outcome.
	MarketplaceEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradepost_marketplace_events_total",
		Help: "Total marketplace events published, by type and outcome",
	}, []string{"event_type", "outcome"})
)
