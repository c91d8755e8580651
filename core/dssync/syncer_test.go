package dssync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bluewitness-api/config"
	"bluewitness-api/core/incidents"
	"bluewitness-api/core/store"
	"bluewitness-api/core/utils"
	"github.com/stretchr/testify/require"
)

const datasetBody = `[
	{"case_id": "mn-minneapolis-14", "city": "Minneapolis", "state": "Minnesota", "lat": 44.94811, "long": -93.2369906,
	 "title": "Police shoot flashbang grenades into crowd", "dates": "2020-05-26 00:00:00",
	 "links": "['http://a']", "tags": "['tear-gas', 'arrest']", "less_lethal_methods": 1},
	{"case_id": "mn-minneapolis-28", "city": "Minneapolis", "state": "Minnesota", "lat": 44.94, "long": -93.26,
	 "title": "Man has his gun confiscated", "dates": "2020-05-26 00:00:00",
	 "links": "[]", "tags": "['arrest']", "uncategorized": 1},
	{"case_id": "", "city": "Nowhere", "state": "X", "title": "broken row"},
	{"case_id": 17}
]`

func newSyncEnv(t *testing.T, handler http.HandlerFunc) (*Syncer, *incidents.Service) {
	t.Helper()
	cfg := &config.AppConfig{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "sync.db")}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.ApplyMigrations(context.Background(), db, logger))
	svc := incidents.NewService(store.NewIncidentsStore(db), logger)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(config.DSConfig{URL: srv.URL, Timeout: 5 * time.Second, MaxBytes: 1 << 20})
	return NewSyncer(client, svc, 0, logger), svc
}

func TestSyncIngestsDatasetAndSkipsExisting(t *testing.T) {
	syncer, svc := newSyncEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(datasetBody))
	})
	ctx := context.Background()

	res, err := syncer.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, Result{Fetched: 4, Created: 2, Skipped: 0, Invalid: 2}, res)

	tags, err := svc.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	links, err := svc.TagLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 3)

	res, err = syncer.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, res.Created)
	require.Equal(t, 2, res.Skipped)

	views, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Empty(t, views[1].Sources)
}

func TestSyncPropagatesUpstreamFailure(t *testing.T) {
	syncer, _ := newSyncEnv(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	_, err := syncer.Sync(context.Background())
	require.Error(t, err)
}

type staticFetcher struct{ body []byte }

func (f staticFetcher) Fetch(ctx context.Context) ([]byte, error) { return f.body, nil }

type countingIngester struct{ calls int }

func (c *countingIngester) IngestInputs(ctx context.Context, inputs []store.IncidentInput, opts store.CreateOptions) (store.CreateResult, error) {
	c.calls++
	return store.CreateResult{Created: len(inputs)}, nil
}

func TestSyncThrottled(t *testing.T) {
	ing := &countingIngester{}
	syncer := NewSyncer(staticFetcher{body: []byte(`[]`)}, ing, time.Hour, utils.NewLogger())
	_, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	_, err = syncer.Sync(context.Background())
	require.True(t, errors.Is(err, ErrThrottled))
	require.Equal(t, 1, ing.calls)
}

type flakyFetcher struct {
	calls int
	fail  int
}

func (f *flakyFetcher) Fetch(ctx context.Context) ([]byte, error) {
	f.calls++
	if f.calls <= f.fail {
		return nil, errors.New("upstream 502")
	}
	return []byte(`[]`), nil
}

func TestSyncFailedFetchDoesNotThrottleRetry(t *testing.T) {
	fetcher := &flakyFetcher{fail: 1}
	ing := &countingIngester{}
	syncer := NewSyncer(fetcher, ing, 30*time.Second, utils.NewLogger())

	_, err := syncer.Sync(context.Background())
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrThrottled))

	_, err = syncer.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.calls)
	require.Equal(t, 1, ing.calls)

	_, err = syncer.Sync(context.Background())
	require.True(t, errors.Is(err, ErrThrottled))
}

func TestSyncBadDatasetDoesNotThrottleRetry(t *testing.T) {
	syncer := NewSyncer(staticFetcher{body: []byte(`not json`)}, &countingIngester{}, 30*time.Second, utils.NewLogger())
	_, err := syncer.Sync(context.Background())
	require.Error(t, err)
	_, err = syncer.Sync(context.Background())
	require.False(t, errors.Is(err, ErrThrottled))
}

func TestClientNotConfigured(t *testing.T) {
	_, err := NewClient(config.DSConfig{}).Fetch(context.Background())
	require.True(t, errors.Is(err, ErrNotConfigured))
}

func TestClientRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()
	_, err := NewClient(config.DSConfig{URL: srv.URL, MaxBytes: 1024}).Fetch(context.Background())
	require.Error(t, err)
}

func TestSchedulerRejectsBadSpecAndNoopsWhenDisabled(t *testing.T) {
	_, err := NewScheduler("every tuesday", nil, nil)
	require.Error(t, err)

	s, err := NewScheduler("", nil, nil)
	require.NoError(t, err)
	require.False(t, s.Enabled())
	s.StartWithContext(context.Background())
	require.NoError(t, s.StopWithContext(context.Background()))
}

func TestSchedulerStartStop(t *testing.T) {
	syncer := NewSyncer(staticFetcher{body: []byte(`[]`)}, &countingIngester{}, 0, utils.NewLogger())
	s, err := NewScheduler("@every 1h", syncer, utils.NewLogger())
	require.NoError(t, err)
	require.True(t, s.Enabled())
	s.StartWithContext(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.StopWithContext(ctx))
}
