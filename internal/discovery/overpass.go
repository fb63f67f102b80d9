// Package discovery finds industrial/aerospace supplier candidates near a
// facility by querying Overpass/OSM for tagged features, then scoring,
// deduplicating, and sorting them by distance.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Element is one OSM feature returned by Overpass. Nodes carry lat/lon
// directly; ways carry a computed center when the query asks for one.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Center is the centroid of a way.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position returns the element's coordinates and whether it has any.
func (e Element) Position() (lat, lon float64, ok bool) {
	switch {
	case e.Type == "node":
		return e.Lat, e.Lon, true
	case e.Center != nil:
		return e.Center.Lat, e.Center.Lon, true
	default:
		return 0, 0, false
	}
}

// Name returns the feature's name tag, or "Unknown".
func (e Element) Name() string {
	if n := e.Tags["name"]; n != "" {
		return n
	}
	return "Unknown"
}

// Overpass queries an Overpass API endpoint.
type Overpass struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

// NewOverpass creates an Overpass client. timeout is both the HTTP budget
// and the server-side [timeout:] directive.
func NewOverpass(endpoint string, timeout time.Duration) *Overpass {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Overpass{
		url:     endpoint,
		timeout: timeout,
		http: &http.Client{
			Timeout: timeout + 10*time.Second,
		},
	}
}

// Around fetches nodes and ways matching any of the tag filters within
// radiusM meters of the given point.
func (o *Overpass) Around(ctx context.Context, lat, lon, radiusM float64, filters []string) ([]Element, error) {
	query := buildQuery(lat, lon, radiusM, filters, o.timeout)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("overpass: unexpected status %d: %.200s", resp.StatusCode, string(body))
	}

	var payload struct {
		Elements []Element `json:"elements"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "overpass: unmarshal response")
	}
	return payload.Elements, nil
}

// buildQuery assembles an Overpass QL union of node and way clauses, one
// pair per tag filter, with way centroids included in the output.
func buildQuery(lat, lon, radiusM float64, filters []string, timeout time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", int(timeout.Seconds()))
	for _, f := range filters {
		fmt.Fprintf(&b, "  node(around:%d,%f,%f)[%s];\n", int(radiusM), lat, lon, f)
		fmt.Fprintf(&b, "  way(around:%d,%f,%f)[%s];\n", int(radiusM), lat, lon, f)
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}
