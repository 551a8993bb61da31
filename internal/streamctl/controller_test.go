package streamctl

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corestream/ytv1/internal/model"
	"github.com/corestream/ytv1/internal/transport"
)

const samplePlayerJSON = `{
	"playabilityStatus": {"status": "OK"},
	"streamingData": {
		"formats": [{"itag": 18, "mimeType": "video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"", "url": "https://example.invalid/18"}],
		"hlsManifestUrl": "https://example.invalid/master.m3u8"
	}
}`

func newTestController(handler http.HandlerFunc) (*Controller, *httptest.Server) {
	srv := httptest.NewTLSServer(handler)
	tr := transport.New(srv.Client(), transport.RetryConfig{MaxAttempts: 1})
	return New(tr, nil), srv
}

func TestGetPlayerResponse_ParsesBodyAndAttachesWatchPage(t *testing.T) {
	ctl, srv := newTestController(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.Contains(t, string(body), `"videoId":"dQw4w9WgXcQ"`)
		w.Write([]byte(samplePlayerJSON))
	})
	defer srv.Close()

	p := model.ClientPersona{
		Name:    model.PersonaIOS,
		APIKey:  "test-key",
		Host:    srv.Listener.Addr().String(),
		Payload: model.ClientPayload{ClientName: "IOS", UserAgent: "test-agent"},
	}

	resp, err := ctl.GetPlayerResponse(context.Background(), p, "dQw4w9WgXcQ", []byte("<html/>"), "https://example.invalid/watch")
	require.NoError(t, err)
	require.True(t, resp.IsPlayable)
	require.Len(t, resp.Streams, 1)
	require.Equal(t, "https://example.invalid/master.m3u8", resp.HLSManifestURL)
	require.Equal(t, []byte("<html/>"), resp.WatchPageHTML)
}

func TestGetDashManifest_FetchesAndParses(t *testing.T) {
	ctl, srv := newTestController(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<MPD><Period><AdaptationSet mimeType="video/mp4"><Representation id="137" bandwidth="1" codecs="avc1"><BaseURL>https://example.invalid/v</BaseURL></Representation></AdaptationSet></Period></MPD>`))
	})
	defer srv.Close()

	descs, err := ctl.GetDashManifest(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, descs, 1)
	require.Equal(t, 137, descs[0].Itag)
}
