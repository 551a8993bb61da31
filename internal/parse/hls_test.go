package parse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleM3U8 = `#EXTM3U
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="aud1",NAME="English",LANGUAGE="en",DEFAULT=YES,URI="https://example.invalid/audio-en.m3u8"
#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080,FRAME-RATE=30.0,CODECS="avc1.640028,mp4a.40.2"
https://example.invalid/1080p.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=1500000,RESOLUTION=854x480,CODECS="avc1.4d401f,mp4a.40.2"
https://example.invalid/480p.m3u8
`

func TestParseHLS_ParsesVariantsAndAudioGroup(t *testing.T) {
	descs, err := ParseHLS([]byte(sampleM3U8))
	require.NoError(t, err)
	require.Len(t, descs, 3)

	audio := descs[0]
	require.True(t, audio.AudioOnly)
	require.Equal(t, "https://example.invalid/audio-en.m3u8", audio.URL)
	require.NotNil(t, audio.AudioTrack)
	require.Equal(t, "en", audio.AudioTrack.Language)
	require.True(t, audio.AudioTrack.Default)

	hd := descs[1]
	require.Equal(t, int64(5000000), hd.Bitrate)
	require.Equal(t, 1920, hd.Width)
	require.Equal(t, 1080, hd.Height)
	require.Equal(t, "avc1.640028", hd.VideoCodec)
	require.Equal(t, "mp4a.40.2", hd.AudioCodec)
	require.Equal(t, "https://example.invalid/1080p.m3u8", hd.URL)

	sd := descs[2]
	require.Equal(t, 854, sd.Width)
}

func TestParseHLS_RejectsMissingHeader(t *testing.T) {
	_, err := ParseHLS([]byte("#EXT-X-STREAM-INF:BANDWIDTH=1\nhttps://example.invalid/x.m3u8\n"))
	require.Error(t, err)
}
