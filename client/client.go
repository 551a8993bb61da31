// Package client is the public entry point for the stream manifest
// resolver: construct a Client with a Config and call GetManifest,
// GetHLSURL, or GetStream. It wires its own HTTP transport and resolver
// together behind a small caller-facing surface.
package client

import (
	"context"
	"io"

	"github.com/corestream/ytv1/internal/model"
	"github.com/corestream/ytv1/internal/resolver"
	"github.com/corestream/ytv1/internal/transport"
)

// Client resolves playable stream manifests for videos on the platform.
// A Client is safe for concurrent use: the only shared resource is the
// HTTP transport, and every GetManifest call owns its own descrambling
// caches.
type Client struct {
	resolver *resolver.Resolver
}

// New builds a Client from cfg. The zero Config is valid and uses the
// defaults documented on each of its fields.
func New(cfg Config) *Client {
	t := transport.New(cfg.httpClient(), cfg.Retry)
	r := resolver.New(t, cfg.logger(),
		resolver.WithInstructionBudget(cfg.instructionBudget()),
		resolver.WithCallTimeout(cfg.callTimeout()),
	)
	return &Client{resolver: r}
}

// GetManifest resolves a video id into a deduplicated StreamManifest. By
// default it tries the [ios, android] personas and falls back to
// [tvEmbedded] if both come back empty; WithPersonas overrides the
// primary list and WithRequireWatchPage controls eager vs lazy watch-page
// fetching.
func (c *Client) GetManifest(ctx context.Context, videoID string, opts ...resolver.Option) (*model.StreamManifest, error) {
	return c.resolver.GetManifest(ctx, videoID, opts...)
}

// GetHLSURL returns the live HLS master playlist URL for videoID, or
// rerr.NotLiveStreamError if the video is not currently live.
func (c *Client) GetHLSURL(ctx context.Context, videoID string) (string, error) {
	return c.resolver.GetHLSURL(ctx, videoID)
}

// GetStream opens a byte stream for a StreamInfo resolved by GetManifest,
// optionally resuming from rangeStart.
func (c *Client) GetStream(ctx context.Context, info model.StreamInfo, rangeStart int64) (io.ReadCloser, error) {
	return c.resolver.GetStream(ctx, info, rangeStart)
}
