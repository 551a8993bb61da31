package parse

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/corestream/ytv1/internal/model"
)

// ParsePlayerResponse performs a lenient, best-effort extraction: gjson
// path queries over the raw body rather than a struct that must mirror the
// upstream contract field for field. Unknown or missing fields are simply
// absent from the result; only a genuinely non-JSON body is reported as an
// error.
func ParsePlayerResponse(body []byte) (model.PlayerResponse, error) {
	if !gjson.ValidBytes(body) {
		return model.PlayerResponse{}, fmt.Errorf("parse: player response is not valid JSON")
	}
	root := gjson.ParseBytes(body)

	resp := model.PlayerResponse{
		IsPlayable:       root.Get("playabilityStatus.status").String() == "OK",
		PlayabilityError: root.Get("playabilityStatus.reason").String(),
		PreviewVideoID:   root.Get("playabilityStatus.errorScreen.playerLegacyDesktopYpcOfferRenderer.itemId").String(),
		DashManifestURL:  root.Get("streamingData.dashManifestUrl").String(),
		HLSManifestURL:   root.Get("streamingData.hlsManifestUrl").String(),
	}

	for _, bucket := range []string{"streamingData.formats", "streamingData.adaptiveFormats"} {
		root.Get(bucket).ForEach(func(_, f gjson.Result) bool {
			resp.Streams = append(resp.Streams, descriptorFromFormat(f))
			return true
		})
	}

	return resp, nil
}

func descriptorFromFormat(f gjson.Result) model.StreamDescriptor {
	mimeType := f.Get("mimeType").String()
	container, acodec, vcodec := splitMimeType(mimeType)

	d := model.StreamDescriptor{
		Itag:          int(f.Get("itag").Int()),
		URL:           f.Get("url").String(),
		Container:     container,
		AudioCodec:    acodec,
		VideoCodec:    vcodec,
		Bitrate:       f.Get("bitrate").Int(),
		ContentLength: f.Get("contentLength").Int(),
		Width:         int(f.Get("width").Int()),
		Height:        int(f.Get("height").Int()),
		QualityLabel:  f.Get("qualityLabel").String(),
		FPS:           int(f.Get("fps").Int()),
		Source:        model.SourceAdaptive,
	}

	if sc := f.Get("signatureCipher"); sc.Exists() {
		d.Cipher = sc.String()
	} else if c := f.Get("cipher"); c.Exists() {
		d.Cipher = c.String()
	}

	if track := f.Get("audioTrack"); track.Exists() {
		d.AudioTrack = &model.AudioTrack{
			Language: track.Get("displayName").String(),
			ID:       track.Get("id").String(),
			Default:  track.Get("audioIsDefault").Bool(),
		}
	}

	if vcodec != "" && acodec != "" {
		// Progressive formats carry both tracks muxed in a single file;
		// adaptiveFormats never does, so this also doubles as the
		// muxed/adaptive discriminator normalization needs downstream.
		d.Source = model.SourceProgressive
	} else if acodec != "" {
		d.AudioOnly = true
	} else if vcodec != "" {
		d.VideoOnly = true
	}

	return d
}

// splitMimeType parses `video/mp4; codecs="avc1.640028, mp4a.40.2"` into
// a container and up to one audio/video codec token each.
func splitMimeType(mime string) (container, audioCodec, videoCodec string) {
	kind, codecsPart, _ := strings.Cut(mime, ";")

	if _, after, ok := strings.Cut(kind, "/"); ok {
		container = after
	}

	start := strings.IndexByte(codecsPart, '"')
	if start < 0 {
		return container, "", ""
	}
	end := strings.IndexByte(codecsPart[start+1:], '"')
	if end < 0 {
		return container, "", ""
	}
	codecs := codecsPart[start+1 : start+1+end]

	for _, tok := range strings.Split(codecs, ",") {
		tok = strings.TrimSpace(tok)
		switch {
		case isAudioCodecToken(tok):
			audioCodec = tok
		case tok != "":
			if videoCodec == "" {
				videoCodec = tok
			} else if audioCodec == "" {
				audioCodec = tok
			}
		}
	}
	return container, audioCodec, videoCodec
}

// isAudioCodecToken reports whether a codec token names one of the audio
// codecs the platform packages (mp4a, opus, ac-3, ec-3, vorbis); every
// other token is treated as a video codec.
func isAudioCodecToken(tok string) bool {
	for _, prefix := range []string{"mp4a", "opus", "ac-3", "ec-3", "vorbis"} {
		if strings.HasPrefix(tok, prefix) {
			return true
		}
	}
	return false
}
