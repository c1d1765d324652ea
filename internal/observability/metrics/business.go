package metrics

import (
	"time"
)

// RecordGeneration records the result and duration of one provider call.
func RecordGeneration(provider string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	GenerationRequestsTotal.WithLabelValues(provider, status).Inc()
	GenerationDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordNewsletterFetch records how a newsletter fetch ended.
// Result is "cache_hit", "generated", or the error kind of a failed fetch.
func RecordNewsletterFetch(result string) {
	NewsletterFetchTotal.WithLabelValues(result).Inc()
}

// RecordNewsletterGenerated records the shape of a freshly generated newsletter
// and the time it took end to end.
func RecordNewsletterGenerated(items, groundingSources int, duration time.Duration) {
	NewsletterItems.Set(float64(items))
	NewsletterGroundingSources.Set(float64(groundingSources))
	NewsletterFetchDuration.Observe(duration.Seconds())
}

// RecordRepair records the result of a malformed JSON repair attempt.
func RecordRepair(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	NewsletterRepairsTotal.WithLabelValues(result).Inc()
}

// RecordLinkCheck records a link validation.
// Result should be "valid", "invalid" or "cached".
func RecordLinkCheck(result string) {
	LinkChecksTotal.WithLabelValues(result).Inc()
}
