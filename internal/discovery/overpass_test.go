package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverpass_Around(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostFormValue("data")

		w.Write([]byte(`{"elements":[
			{"type":"node","id":1,"lat":51.4545,"lon":-2.5879,"tags":{"name":"Aero Ltd"}},
			{"type":"way","id":2,"center":{"lat":51.46,"lon":-2.59},"tags":{"landuse":"industrial"}},
			{"type":"way","id":3,"tags":{"name":"no center"}}
		]}`))
	}))
	defer srv.Close()

	op := NewOverpass(srv.URL, 25*time.Second)
	elements, err := op.Around(context.Background(), 51.4545, -2.5879, 5000, []string{`"aeroway"`, `"craft"`})
	require.NoError(t, err)
	require.Len(t, elements, 3)

	assert.Contains(t, gotQuery, "[out:json][timeout:25];")
	assert.Contains(t, gotQuery, `node(around:5000,51.454500,-2.587900)["aeroway"];`)
	assert.Contains(t, gotQuery, `way(around:5000,51.454500,-2.587900)["craft"];`)
	assert.Contains(t, gotQuery, "out center;")

	lat, lon, ok := elements[0].Position()
	assert.True(t, ok)
	assert.Equal(t, 51.4545, lat)
	assert.Equal(t, -2.5879, lon)
	assert.Equal(t, "Aero Ltd", elements[0].Name())

	lat, lon, ok = elements[1].Position()
	assert.True(t, ok)
	assert.Equal(t, 51.46, lat)
	assert.Equal(t, -2.59, lon)
	assert.Equal(t, "Unknown", elements[1].Name())

	_, _, ok = elements[2].Position()
	assert.False(t, ok, "way without center has no position")
}

func TestOverpass_AroundServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate_limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	op := NewOverpass(srv.URL, 10*time.Second)
	_, err := op.Around(context.Background(), 51.45, -2.58, 1000, DefaultFilters)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 429")
}

func TestOverpass_AroundBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	op := NewOverpass(srv.URL, 10*time.Second)
	_, err := op.Around(context.Background(), 51.45, -2.58, 1000, DefaultFilters)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
