package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corestream/ytv1/internal/model"
	"github.com/corestream/ytv1/internal/rerr"
	"github.com/corestream/ytv1/internal/transport"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

const watchPageHTML = `<html><body><script>var ytInitialPlayerResponse = {};</script></body></html>`

// TestClient_GetManifest_EndToEnd exercises New(Config) through
// GetManifest against a fake transport, driving the Client end to end.
func TestClient_GetManifest_EndToEnd(t *testing.T) {
	httpClient := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		switch {
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/youtubei/v1/player"):
			body := `{"playabilityStatus":{"status":"OK"},"streamingData":{"formats":[
				{"itag":18,"mimeType":"video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"","bitrate":500000,"contentLength":"1000","url":"https://video.invalid/18"}
			]}}`
			return &http.Response{StatusCode: http.StatusOK, Header: make(http.Header), Body: io.NopCloser(strings.NewReader(body))}, nil
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/watch"):
			return &http.Response{StatusCode: http.StatusOK, Header: make(http.Header), Body: io.NopCloser(strings.NewReader(watchPageHTML))}, nil
		case r.Method == http.MethodHead:
			return &http.Response{StatusCode: http.StatusOK, Header: make(http.Header), Body: io.NopCloser(bytes.NewReader(nil))}, nil
		}
		return &http.Response{StatusCode: http.StatusNotFound, Header: make(http.Header), Body: io.NopCloser(strings.NewReader(""))}, nil
	})}

	c := New(Config{HTTPClient: httpClient, Retry: transport.RetryConfig{MaxAttempts: 1}})

	manifest, err := c.GetManifest(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	require.Equal(t, 1, manifest.Len())
	require.Equal(t, model.KindMuxedProgressive, manifest.Entries()[0].Kind)
}

func TestClient_GetManifest_RejectsMalformedVideoID(t *testing.T) {
	c := New(Config{})
	_, err := c.GetManifest(context.Background(), "nope")
	require.Error(t, err)
	var argErr *rerr.ArgumentError
	require.ErrorAs(t, err, &argErr)
}
