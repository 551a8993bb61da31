package model

import "testing"

func TestStreamKind_HasAudioHasVideo(t *testing.T) {
	cases := []struct {
		kind      StreamKind
		wantAudio bool
		wantVideo bool
	}{
		{KindMuxedProgressive, true, true},
		{KindVideoOnlyAdaptive, false, true},
		{KindAudioOnlyAdaptive, true, false},
		{KindHLSMuxed, true, true},
		{KindHLSVideoOnly, false, true},
		{KindHLSAudio, true, false},
	}
	for _, c := range cases {
		if got := c.kind.HasAudio(); got != c.wantAudio {
			t.Errorf("%s.HasAudio() = %v, want %v", c.kind, got, c.wantAudio)
		}
		if got := c.kind.HasVideo(); got != c.wantVideo {
			t.Errorf("%s.HasVideo() = %v, want %v", c.kind, got, c.wantVideo)
		}
	}
}

func TestStreamInfo_KeyDistinguishesAudioTracksSharingAnItag(t *testing.T) {
	base := StreamInfo{Itag: 140, Kind: KindAudioOnlyAdaptive}
	withTrack := base
	withTrack.AudioTrack = &AudioTrack{ID: "en.1", Language: "en"}

	if base.Key() == withTrack.Key() {
		t.Fatalf("expected distinct keys, got %q for both", base.Key())
	}
}

func TestStreamInfo_KeyIgnoresAudioTrackForVideoVariants(t *testing.T) {
	videoOnly := StreamInfo{Itag: 137, Kind: KindVideoOnlyAdaptive, AudioTrack: &AudioTrack{ID: "en.1"}}
	if videoOnly.Key() != "137" {
		t.Fatalf("Key() = %q, want %q", videoOnly.Key(), "137")
	}
}
