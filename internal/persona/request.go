package persona

import "github.com/corestream/ytv1/internal/model"

// PlayerRequest is the wire body posted to the platform's player endpoint.
// Field names and nesting mirror the upstream contract bit-exactly; the
// platform rejects requests that deviate from the shape its official
// clients send.
type PlayerRequest struct {
	VideoID        string         `json:"videoId"`
	Context        requestContext `json:"context"`
	ContentCheckOk bool           `json:"contentCheckOk,omitempty"`
	RacyCheckOk    bool           `json:"racyCheckOk,omitempty"`
}

type requestContext struct {
	Client clientInfo `json:"client"`
}

type clientInfo struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	HL            string `json:"hl"`
	Platform      string `json:"platform,omitempty"`
	DeviceMake    string `json:"deviceMake,omitempty"`
	DeviceModel   string `json:"deviceModel,omitempty"`
	OsName        string `json:"osName,omitempty"`
	OsVersion     string `json:"osVersion,omitempty"`
	UserAgent     string `json:"userAgent,omitempty"`
}

// NewPlayerRequest composes a POST body from persona's template plus the
// per-request video id.
func NewPlayerRequest(p model.ClientPersona, videoID string) PlayerRequest {
	return PlayerRequest{
		VideoID:        videoID,
		ContentCheckOk: true,
		RacyCheckOk:    true,
		Context: requestContext{
			Client: clientInfo{
				ClientName:    p.Payload.ClientName,
				ClientVersion: p.Payload.ClientVersion,
				HL:            p.Payload.Locale,
				Platform:      p.Payload.Platform,
				DeviceMake:    p.Payload.DeviceMake,
				DeviceModel:   p.Payload.DeviceModel,
				OsName:        p.Payload.OSName,
				OsVersion:     p.Payload.OSVersion,
				UserAgent:     p.Payload.UserAgent,
			},
		},
	}
}
