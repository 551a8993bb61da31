// Package streamctl is the thin layer that turns one (video id, persona)
// pair into a parsed PlayerResponse, and fetches the DASH/HLS manifests a
// response points at.
package streamctl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/corestream/ytv1/internal/model"
	"github.com/corestream/ytv1/internal/parse"
	"github.com/corestream/ytv1/internal/persona"
	"github.com/corestream/ytv1/internal/transport"
)

const playerEndpointPath = "/youtubei/v1/player"

// Controller issues player/DASH/HLS requests and parses their responses.
type Controller struct {
	transport *transport.Transport
	log       *zap.Logger
}

// New returns a Controller backed by t. A nil logger is replaced with a
// no-op one.
func New(t *transport.Transport, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{transport: t, log: log}
}

// GetPlayerResponse issues one player-endpoint query for persona and
// returns the parsed response. watchPageHTML, if non-nil, is attached to
// the result for later descrambling and is never itself fetched here.
func (c *Controller) GetPlayerResponse(ctx context.Context, p model.ClientPersona, videoID string, watchPageHTML []byte, watchPageURL string) (model.PlayerResponse, error) {
	body, err := json.Marshal(persona.NewPlayerRequest(p, videoID))
	if err != nil {
		return model.PlayerResponse{}, fmt.Errorf("streamctl: encode player request: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s%s?key=%s", p.Host, playerEndpointPath, transport.EscapeQueryValue(p.APIKey))
	headers := http.Header{
		"Content-Type": []string{"application/json"},
		"User-Agent":   []string{p.Payload.UserAgent},
	}

	respBody, err := c.transport.Post(ctx, endpoint, headers, body)
	if err != nil {
		return model.PlayerResponse{}, err
	}

	resp, err := parse.ParsePlayerResponse(respBody)
	if err != nil {
		return model.PlayerResponse{}, fmt.Errorf("streamctl: %w", err)
	}

	if len(resp.Streams) == 0 && resp.DashManifestURL == "" && resp.HLSManifestURL == "" && !resp.IsPlayable {
		c.log.Warn("player response carries no streams and is not playable",
			zap.String("persona", string(p.Name)), zap.String("video_id", videoID))
	}

	resp.WatchPageHTML = watchPageHTML
	resp.WatchPageURL = watchPageURL
	return resp, nil
}

// GetDashManifest fetches and parses an MPEG-DASH manifest.
func (c *Controller) GetDashManifest(ctx context.Context, manifestURL string) ([]model.StreamDescriptor, error) {
	body, err := c.transport.Get(ctx, manifestURL, nil)
	if err != nil {
		return nil, err
	}
	return parse.ParseDASH(body)
}

// GetHLSManifest fetches and parses an M3U8 manifest.
func (c *Controller) GetHLSManifest(ctx context.Context, manifestURL string) ([]model.StreamDescriptor, error) {
	body, err := c.transport.Get(ctx, manifestURL, nil)
	if err != nil {
		return nil, err
	}
	return parse.ParseHLS(body)
}
