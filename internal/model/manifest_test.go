package model

import "testing"

func TestStreamManifest_AddDeduplicatesByKey(t *testing.T) {
	m := NewStreamManifest()
	if !m.Add(StreamInfo{Itag: 18, Kind: KindMuxedProgressive}) {
		t.Fatalf("first add should succeed")
	}
	if m.Add(StreamInfo{Itag: 18, Kind: KindMuxedProgressive}) {
		t.Fatalf("duplicate itag should be rejected")
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
}

func TestStreamManifest_AddKeysAudioOnlyByTrack(t *testing.T) {
	m := NewStreamManifest()
	en := &AudioTrack{ID: "en.1", Language: "en"}
	de := &AudioTrack{ID: "de.1", Language: "de"}

	if !m.Add(StreamInfo{Itag: 140, Kind: KindAudioOnlyAdaptive, AudioTrack: en}) {
		t.Fatalf("first audio track add should succeed")
	}
	if !m.Add(StreamInfo{Itag: 140, Kind: KindAudioOnlyAdaptive, AudioTrack: de}) {
		t.Fatalf("distinct audio track sharing an itag should not collide")
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
}

func TestStreamManifest_MergePreservesOrderAndDedupes(t *testing.T) {
	a := NewStreamManifest()
	a.Add(StreamInfo{Itag: 18, Kind: KindMuxedProgressive})

	b := NewStreamManifest()
	b.Add(StreamInfo{Itag: 18, Kind: KindMuxedProgressive})
	b.Add(StreamInfo{Itag: 22, Kind: KindMuxedProgressive})

	a.Merge(b)
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	entries := a.Entries()
	if entries[0].Itag != 18 || entries[1].Itag != 22 {
		t.Fatalf("unexpected order: %+v", entries)
	}
}

func TestStreamManifest_Reset(t *testing.T) {
	m := NewStreamManifest()
	m.Add(StreamInfo{Itag: 18})
	m.Reset()
	if m.Len() != 0 {
		t.Fatalf("Len() after Reset() = %d, want 0", m.Len())
	}
	if !m.Add(StreamInfo{Itag: 18}) {
		t.Fatalf("itag 18 should be insertable again after Reset()")
	}
}
