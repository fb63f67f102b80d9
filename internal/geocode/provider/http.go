package provider

import (
	"context"
	"io"
	"net/http"
)

// maxBodyBytes bounds how much of an upstream response is read; geocoding
// payloads are small and anything larger is malformed.
const maxBodyBytes = 1 << 20

// getBody issues a GET and returns the status code and body. Network-level
// failures come back classified as transport errors for backend.
func getBody(ctx context.Context, hc *http.Client, backend, url string, header http.Header) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, newError(backend, KindUpstream, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, newError(backend, KindTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, newError(backend, KindTransport, err)
	}
	return resp.StatusCode, body, nil
}

// snippet truncates an upstream body for error messages.
func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
