package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatim_ParsesStringCoordinates(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"lat":"51.4545","lon":"-2.5879"}]`))
	}))
	t.Cleanup(srv.Close)

	p := NewNominatim("aeromap/1.0 (dev@example.com)",
		WithBaseURL(srv.URL), WithMinGap(time.Millisecond), noRetry())

	res, err := p.Geocode(context.Background(), "Filton, Bristol")
	require.NoError(t, err)
	assert.Equal(t, 51.4545, res.Lat)
	assert.Equal(t, -2.5879, res.Lon)
	assert.Equal(t, "nominatim", res.Provider)
	assert.Equal(t, "aeromap/1.0 (dev@example.com)", gotUA)
}

func TestNominatim_EmptyArrayIsEmptyResult(t *testing.T) {
	srv := serve(t, http.StatusOK, `[]`)
	p := NewNominatim("ua", WithBaseURL(srv.URL), WithMinGap(time.Millisecond), noRetry())

	_, err := p.Geocode(context.Background(), "nowhere at all")
	assert.True(t, IsKind(err, KindEmptyResult))
}

func TestNominatim_503IsRateLimited(t *testing.T) {
	srv := serve(t, http.StatusServiceUnavailable, ``)
	p := NewNominatim("ua", WithBaseURL(srv.URL), WithMinGap(time.Millisecond), noRetry())

	_, err := p.Geocode(context.Background(), "x")
	assert.True(t, IsKind(err, KindRateLimited))
}

// TestNominatim_GlobalMinGapUnderConcurrency checks the hard upstream
// contract: across concurrent callers, consecutive outbound requests are
// separated by at least the configured gap.
func TestNominatim_GlobalMinGapUnderConcurrency(t *testing.T) {
	const gap = 50 * time.Millisecond
	const callers = 4

	var mu sync.Mutex
	var arrivals []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		w.Write([]byte(`[{"lat":"1.0","lon":"2.0"}]`))
	}))
	t.Cleanup(srv.Close)

	p := NewNominatim("ua", WithBaseURL(srv.URL), WithMinGap(gap), noRetry())

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Geocode(context.Background(), "same place")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, arrivals, callers)
	sort.Slice(arrivals, func(i, j int) bool { return arrivals[i].Before(arrivals[j]) })
	// Allow a small scheduling tolerance; the limiter spaces request starts,
	// arrival timestamps include handler scheduling noise.
	const tolerance = 10 * time.Millisecond
	for i := 1; i < len(arrivals); i++ {
		delta := arrivals[i].Sub(arrivals[i-1])
		assert.GreaterOrEqual(t, delta, gap-tolerance,
			"requests %d and %d only %v apart", i-1, i, delta)
	}
}

func TestNominatim_CancelledWaitDoesNotPoisonLimiter(t *testing.T) {
	srv := serve(t, http.StatusOK, `[{"lat":"1.0","lon":"2.0"}]`)
	p := NewNominatim("ua", WithBaseURL(srv.URL), WithMinGap(20*time.Millisecond), noRetry())

	// First call consumes the initial token.
	_, err := p.Geocode(context.Background(), "a")
	require.NoError(t, err)

	// Second call is cancelled while waiting on the limiter.
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	_, err = p.Geocode(ctx, "b")
	require.Error(t, err)

	// A later caller still succeeds; the limiter state is intact.
	_, err = p.Geocode(context.Background(), "c")
	assert.NoError(t, err)
}
