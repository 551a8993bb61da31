package model

import "fmt"

// StreamKind is the normalized shape of a StreamInfo entry: six tagged
// variants over one flat struct, the idiomatic Go rendering of a closed
// sum type.
type StreamKind string

const (
	KindMuxedProgressive  StreamKind = "muxed_progressive"
	KindVideoOnlyAdaptive StreamKind = "video_only_adaptive"
	KindAudioOnlyAdaptive StreamKind = "audio_only_adaptive"
	KindHLSMuxed          StreamKind = "hls_muxed"
	KindHLSVideoOnly      StreamKind = "hls_video_only"
	KindHLSAudio          StreamKind = "hls_audio"
)

// HasAudio reports whether the variant carries an audio component.
func (k StreamKind) HasAudio() bool {
	switch k {
	case KindMuxedProgressive, KindAudioOnlyAdaptive, KindHLSMuxed, KindHLSAudio:
		return true
	default:
		return false
	}
}

// HasVideo reports whether the variant carries a video component.
func (k StreamKind) HasVideo() bool {
	switch k {
	case KindMuxedProgressive, KindVideoOnlyAdaptive, KindHLSMuxed, KindHLSVideoOnly:
		return true
	default:
		return false
	}
}

// Quality is a coarse, comparable ranking derived from a platform quality
// label (e.g. "1080p60" -> QualityFullHD).
type Quality string

const (
	QualityUnknown Quality = "unknown"
	QualityLow     Quality = "low"     // <= 240p
	QualitySD      Quality = "sd"      // 360p-480p
	QualityHD      Quality = "hd"      // 720p
	QualityFullHD  Quality = "full_hd" // 1080p
	QualityQuadHD  Quality = "quad_hd" // 1440p
	Quality4K      Quality = "4k"      // 2160p
	Quality8K      Quality = "8k"      // 4320p+
)

// StreamInfo is the normalized output entity. All variants carry the
// fields common to every rendition; video-bearing and audio-bearing
// variants additionally populate their respective optional fields.
type StreamInfo struct {
	VideoID string
	Itag    int
	URL     string
	Kind    StreamKind

	Container  string
	FileSize   int64
	Bitrate    int64
	AudioCodec string
	VideoCodec string

	// Video-bearing fields.
	QualityLabel string
	Quality      Quality
	Width        int
	Height       int
	FPS          int

	// Adaptive-only.
	Fragments []Fragment

	// Audio-only.
	AudioTrack *AudioTrack
}

// Key returns the manifest uniqueness key for this entry: itag alone,
// except for audio streams carrying a distinguishing audio track, which
// are additionally keyed by that track. The platform reuses a single itag
// across multiple dubbed audio tracks on the same rendition, so itag alone
// would collapse them into one entry.
func (s StreamInfo) Key() string {
	if s.Kind.HasAudio() && !s.Kind.HasVideo() && s.AudioTrack != nil {
		return fmt.Sprintf("%d|%s|%s", s.Itag, s.AudioTrack.ID, s.AudioTrack.Language)
	}
	return fmt.Sprintf("%d", s.Itag)
}
