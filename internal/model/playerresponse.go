package model

import "strings"

// PlayerResponse is the parsed result of a single (video, persona) query
// against the platform's player endpoint.
type PlayerResponse struct {
	IsPlayable       bool
	PlayabilityError string

	// PreviewVideoID, when set, means the requested video is gated behind
	// purchase and the platform substituted a preview clip.
	PreviewVideoID string

	DashManifestURL string
	HLSManifestURL  string

	Streams []StreamDescriptor

	// WatchPageHTML is attached lazily so callers can request descrambling
	// without re-fetching the watch page. It is a borrowed reference for
	// the duration of normalization; PlayerResponse never owns it.
	WatchPageHTML []byte
	WatchPageURL  string
}

// RequiresPurchase reports whether the response indicates paid content.
func (p *PlayerResponse) RequiresPurchase() bool {
	if p.PreviewVideoID != "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.PlayabilityError), "payment")
}
