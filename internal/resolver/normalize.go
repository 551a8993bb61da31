package resolver

import (
	"context"
	"fmt"
	"net/url"

	"github.com/corestream/ytv1/internal/descramble"
	"github.com/corestream/ytv1/internal/model"
	"github.com/corestream/ytv1/internal/rerr"
	"github.com/corestream/ytv1/internal/transport"
)

// errDiscardDescriptor is a sentinel used internally by normalizeDescriptor
// to signal "drop this descriptor, do not surface an error" when its
// content length can't be determined to be strictly positive. It never
// escapes this package.
var errDiscardDescriptor = fmt.Errorf("resolver: descriptor discarded")

const defaultFrameRate = 24

// playerScriptLoader lazily fetches and caches the base player script body
// for the lifetime of one resolver call; it is backed by the call's own
// watch page state so descrambling only pays the extra round trip when a
// descriptor actually needs it.
type playerScriptLoader func(ctx context.Context) (string, error)

// normalizeDescriptor turns one raw StreamDescriptor into a fully-resolved
// StreamInfo: descrambling its playback URL, probing its content length
// when unknown, classifying its StreamKind, and deriving a Quality.
func normalizeDescriptor(
	ctx context.Context,
	videoID string,
	personaName model.PersonaName,
	d model.StreamDescriptor,
	loadPlayerJS playerScriptLoader,
	descr *descramble.Descrambler,
	t *transport.Transport,
) (model.StreamInfo, error) {
	rawURL, err := resolveURL(ctx, d, loadPlayerJS, descr)
	if err != nil {
		return model.StreamInfo{}, err
	}

	length := d.ContentLength
	if length <= 0 && rawURL != "" {
		if probed, ok := t.ProbeContentLength(ctx, rawURL); ok {
			length = probed
		}
	}
	if length <= 0 {
		return model.StreamInfo{}, errDiscardDescriptor
	}

	kind := classifyKind(d)

	fps := d.FPS
	if fps <= 0 {
		fps = defaultFrameRate
	}

	quality := model.QualityUnknown
	width, height := d.Width, d.Height
	if d.QualityLabel != "" {
		quality = qualityFromLabel(d.QualityLabel)
	}
	if quality == model.QualityUnknown {
		quality = qualityFromResolution(width, height)
	}

	if d.AudioCodec == "" && d.VideoCodec == "" {
		return model.StreamInfo{}, &rerr.CodecExtractionError{Persona: string(personaName), Itag: d.Itag}
	}

	return model.StreamInfo{
		VideoID:      videoID,
		Itag:         d.Itag,
		URL:          rawURL,
		Kind:         kind,
		Container:    d.Container,
		FileSize:     length,
		Bitrate:      d.Bitrate,
		AudioCodec:   d.AudioCodec,
		VideoCodec:   d.VideoCodec,
		QualityLabel: d.QualityLabel,
		Quality:      quality,
		Width:        width,
		Height:       height,
		FPS:          fps,
		Fragments:    d.Fragments,
		AudioTrack:   d.AudioTrack,
	}, nil
}

// resolveURL produces the final, fully-descrambled playback URL for a
// descriptor: a signatureCipher/cipher is descrambled into a URL first,
// then any remaining unresolved "n" query parameter is descrambled in
// place.
func resolveURL(ctx context.Context, d model.StreamDescriptor, loadPlayerJS playerScriptLoader, descr *descramble.Descrambler) (string, error) {
	rawURL := d.URL

	if d.Cipher != "" {
		playerJS, err := loadPlayerJS(ctx)
		if err != nil {
			return "", err
		}
		rawURL, err = descr.ApplyCipher(ctx, playerJS, d.Cipher)
		if err != nil {
			return "", err
		}
	}

	if rawURL == "" {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("resolver: malformed descriptor url: %w", err)
	}
	if u.Query().Get("n") == "" {
		return rawURL, nil
	}

	playerJS, err := loadPlayerJS(ctx)
	if err != nil {
		return "", err
	}
	return descr.ApplyNParam(ctx, playerJS, rawURL)
}

// classifyKind maps a raw descriptor's source and codec shape onto one of
// the six StreamKind variants.
func classifyKind(d model.StreamDescriptor) model.StreamKind {
	switch d.Source {
	case model.SourceHLS:
		switch {
		case d.AudioOnly:
			return model.KindHLSAudio
		case d.VideoOnly:
			return model.KindHLSVideoOnly
		default:
			return model.KindHLSMuxed
		}
	case model.SourceProgressive:
		if d.AudioCodec != "" && d.VideoCodec != "" {
			return model.KindMuxedProgressive
		}
		fallthrough
	default: // model.SourceAdaptive, or a progressive descriptor missing one codec
		if d.AudioOnly || (d.AudioCodec != "" && d.VideoCodec == "") {
			return model.KindAudioOnlyAdaptive
		}
		return model.KindVideoOnlyAdaptive
	}
}
