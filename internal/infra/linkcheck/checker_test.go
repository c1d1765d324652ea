package linkcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"ai-pulse/internal/domain/entity"
)

type testServer struct {
	*httptest.Server
	hits atomic.Int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, DefaultUserAgent, r.UserAgent())
			w.WriteHeader(http.StatusOK)
		case "/moved":
			http.Redirect(w, r, "/ok", http.StatusFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newChecker(t *testing.T, allowPrivate bool) *Checker {
	t.Helper()
	return New(context.Background(), Config{AllowPrivate: allowPrivate},
		WithLimiter(rate.NewLimiter(rate.Inf, 1)))
}

func TestValidate(t *testing.T) {
	srv := newTestServer(t)
	c := newChecker(t, true)
	ctx := context.Background()

	ok := c.Validate(ctx, srv.URL+"/ok")
	assert.True(t, ok.Valid)
	assert.True(t, ok.Checked)
	assert.Equal(t, http.StatusOK, ok.Status)
	assert.Empty(t, ok.RedirectURL)

	gone := c.Validate(ctx, srv.URL+"/gone")
	assert.False(t, gone.Valid)
	assert.Equal(t, http.StatusNotFound, gone.Status)

	moved := c.Validate(ctx, srv.URL+"/moved")
	assert.True(t, moved.Valid)
	assert.Equal(t, srv.URL+"/ok", moved.RedirectURL)
}

func TestValidate_CachesByFixedURL(t *testing.T) {
	srv := newTestServer(t)
	c := newChecker(t, true)
	ctx := context.Background()

	first := c.Validate(ctx, srv.URL+"/ok")
	second := c.Validate(ctx, srv.URL+"/ok?utm_source=newsletter")

	assert.True(t, first.Valid)
	assert.True(t, second.Valid)
	assert.Equal(t, srv.URL+"/ok?utm_source=newsletter", second.URL)
	assert.Equal(t, srv.URL+"/ok", second.FixedURL)
	assert.Equal(t, int64(1), srv.hits.Load())
	assert.Equal(t, 1, c.Stats().Size)

	c.ClearCache(ctx)
	c.Validate(ctx, srv.URL+"/ok")
	assert.Equal(t, int64(2), srv.hits.Load())
}

func TestValidate_BlocksPrivateAddresses(t *testing.T) {
	srv := newTestServer(t)
	c := newChecker(t, false)

	res := c.Validate(context.Background(), srv.URL+"/ok")

	assert.False(t, res.Valid)
	assert.True(t, res.Checked)
	assert.NotEmpty(t, res.Error)
	assert.Zero(t, srv.hits.Load())
}

func TestValidate_InvalidScheme(t *testing.T) {
	c := newChecker(t, true)

	res := c.Validate(context.Background(), "ftp://example.com/file")

	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "http or https")
}

func TestCheckNewsletter(t *testing.T) {
	srv := newTestServer(t)
	c := newChecker(t, true)
	generated := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	n := entity.NewNewsletter(&entity.Payload{Newsletter: []entity.Section{
		{CategoryTitle: "Keep", Items: []entity.Item{
			{Title: "ok", Summary: "s", SourceURL: srv.URL + "/ok?utm_campaign=x", SourceType: entity.SourceTypeWeb},
			{Title: "gone", Summary: "s", SourceURL: srv.URL + "/gone", SourceType: entity.SourceTypeWeb},
		}},
		{CategoryTitle: "Drop", Items: []entity.Item{
			{Title: "gone too", Summary: "s", SourceURL: srv.URL + "/missing", SourceType: entity.SourceTypeX},
		}},
	}}, []entity.GroundingSource{{URI: "https://g/1", Title: "g"}}, generated)

	out, report, err := c.CheckNewsletter(context.Background(), n)
	require.NoError(t, err)

	require.Len(t, out.Sections, 1)
	assert.Equal(t, "Keep", out.Sections[0].CategoryTitle)
	require.Len(t, out.Sections[0].Items, 1)
	item := out.Sections[0].Items[0]
	assert.Equal(t, srv.URL+"/ok", item.SourceURL)
	assert.Equal(t, entity.ItemID(srv.URL+"/ok"), item.ID)

	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 1, report.Valid)
	assert.Equal(t, 1, report.Fixed)
	assert.Len(t, report.Dropped, 2)

	assert.Equal(t, generated, out.GeneratedAt)
	assert.Equal(t, n.GroundingSources, out.GroundingSources)

	// the input is left untouched
	assert.Len(t, n.Sections, 2)
	assert.Equal(t, srv.URL+"/ok?utm_campaign=x", n.Sections[0].Items[0].SourceURL)
}

func TestFilter_EmptyNewsletterKeepsEmptySections(t *testing.T) {
	c := newChecker(t, true)
	n := entity.NewNewsletter(&entity.Payload{Newsletter: []entity.Section{}}, nil, time.Now())

	out, err := c.Filter(context.Background(), n)
	require.NoError(t, err)
	require.NotNil(t, out.Sections)
	assert.Empty(t, out.Sections)

	body, err := json.Marshal(out)
	require.NoError(t, err)
	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &got))
	assert.JSONEq(t, `[]`, string(got["newsletter"]))
}

func TestCheckNewsletter_Cancelled(t *testing.T) {
	srv := newTestServer(t)
	c := newChecker(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := entity.NewNewsletter(&entity.Payload{Newsletter: []entity.Section{
		{CategoryTitle: "A", Items: []entity.Item{
			{Title: "ok", Summary: "s", SourceURL: srv.URL + "/ok", SourceType: entity.SourceTypeWeb},
		}},
	}}, nil, time.Now())

	_, _, err := c.CheckNewsletter(ctx, n)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilter_KeepsNewsletterWhenEveryLinkFails(t *testing.T) {
	srv := newTestServer(t)
	c := newChecker(t, true)

	n := entity.NewNewsletter(&entity.Payload{Newsletter: []entity.Section{
		{CategoryTitle: "A", Items: []entity.Item{
			{Title: "gone", Summary: "s", SourceURL: srv.URL + "/gone", SourceType: entity.SourceTypeWeb},
		}},
	}}, nil, time.Now())

	out, err := c.Filter(context.Background(), n)
	require.NoError(t, err)
	assert.Same(t, n, out)
}

func TestFilter_DropsBrokenLinks(t *testing.T) {
	srv := newTestServer(t)
	c := newChecker(t, true)

	n := entity.NewNewsletter(&entity.Payload{Newsletter: []entity.Section{
		{CategoryTitle: "A", Items: []entity.Item{
			{Title: "ok", Summary: "s", SourceURL: srv.URL + "/ok", SourceType: entity.SourceTypeWeb},
			{Title: "gone", Summary: "s", SourceURL: srv.URL + "/gone", SourceType: entity.SourceTypeWeb},
		}},
	}}, nil, time.Now())

	out, err := c.Filter(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, 1, out.ItemCount())
}
