package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordGeneration(t *testing.T) {
	tests := []struct {
		name       string
		provider   string
		success    bool
		wantStatus string
	}{
		{name: "success", provider: "Gemini API", success: true, wantStatus: "success"},
		{name: "failure", provider: "Claude API", success: false, wantStatus: "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := GenerationRequestsTotal.WithLabelValues(tt.provider, tt.wantStatus)
			before := testutil.ToFloat64(counter)

			RecordGeneration(tt.provider, tt.success, 2*time.Second)

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestRecordNewsletterFetch(t *testing.T) {
	for _, result := range []string{"cache_hit", "generated", "provider_blocked"} {
		t.Run(result, func(t *testing.T) {
			counter := NewsletterFetchTotal.WithLabelValues(result)
			before := testutil.ToFloat64(counter)

			RecordNewsletterFetch(result)

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestRecordNewsletterGenerated(t *testing.T) {
	RecordNewsletterGenerated(12, 4, 30*time.Second)

	assert.Equal(t, float64(12), testutil.ToFloat64(NewsletterItems))
	assert.Equal(t, float64(4), testutil.ToFloat64(NewsletterGroundingSources))
}

func TestRecordRepair(t *testing.T) {
	ok := NewsletterRepairsTotal.WithLabelValues("success")
	failed := NewsletterRepairsTotal.WithLabelValues("failure")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordRepair(true)
	RecordRepair(false)
	RecordRepair(false)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+2, testutil.ToFloat64(failed))
}

func TestMetricsFunctions_AllCallable(t *testing.T) {
	// Test that all functions can be called in sequence without panic
	assert.NotPanics(t, func() {
		RecordGeneration("OpenAI API", true, time.Second)
		RecordNewsletterFetch("generated")
		RecordNewsletterGenerated(3, 1, time.Second)
		RecordRepair(true)
		RecordLinkCheck("valid")
		RecordLinkCheck("cached")
		RecordOperationDuration("cache_get", 10*time.Millisecond)
		RecordHTTPRequest("GET", "/api/newsletter", "200", 50*time.Millisecond, 2048)
	})
}
