package parse

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/corestream/ytv1/internal/model"
)

// ParseHLS scans a master M3U8 playlist line by line and returns one
// StreamDescriptor per #EXT-X-STREAM-INF variant, plus one per
// #EXT-X-MEDIA:TYPE=AUDIO audio group. HLS variants are always muxed
// audio+video at the container level even when the underlying segments are
// fragmented, so Kind classification downstream treats every variant entry
// as HLS-muxed unless it is video-only or comes from an audio group.
func ParseHLS(body []byte) ([]model.StreamDescriptor, error) {
	text := string(body)
	groupCodecs := collectAudioGroupCodecs(text)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var header bool
	var out []model.StreamDescriptor
	var pending *model.StreamDescriptor

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "#EXTM3U":
			header = true
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			d := parseStreamInf(line[len("#EXT-X-STREAM-INF:"):])
			pending = &d
		case strings.HasPrefix(line, "#EXT-X-MEDIA:") && strings.Contains(line, `TYPE=AUDIO`):
			if d := parseAudioMedia(line[len("#EXT-X-MEDIA:"):], groupCodecs); d != nil {
				out = append(out, *d)
			}
		case line == "" || strings.HasPrefix(line, "#"):
			// comment or tag we don't act on
		default:
			if pending != nil {
				pending.URL = line
				pending.Source = model.SourceHLS
				out = append(out, *pending)
				pending = nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse: hls manifest: %w", err)
	}
	if !header {
		return nil, fmt.Errorf("parse: hls manifest: missing #EXTM3U header")
	}
	return out, nil
}

// collectAudioGroupCodecs pre-scans every #EXT-X-STREAM-INF tag for an
// AUDIO="<group-id>" attribute and records the audio codec token out of
// that variant's CODECS list against the group id. #EXT-X-MEDIA:TYPE=AUDIO
// tags carry no codec attribute of their own in the M3U8 grammar; a variant
// that references the group is the only place the codec is actually
// spelled out, and it may appear before or after the EXT-X-MEDIA tag that
// declares the group, so this runs as its own pass ahead of the main scan.
func collectAudioGroupCodecs(body string) map[string]string {
	groupCodecs := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "#EXT-X-STREAM-INF:") {
			continue
		}
		kv := parseAttrList(line[len("#EXT-X-STREAM-INF:"):])
		group := strings.Trim(kv["AUDIO"], `"`)
		if group == "" {
			continue
		}
		codecsAttr := strings.Trim(kv["CODECS"], `"`)
		for _, tok := range strings.Split(codecsAttr, ",") {
			tok = strings.TrimSpace(tok)
			if tok != "" && isAudioCodecToken(tok) {
				groupCodecs[group] = tok
				break
			}
		}
	}
	return groupCodecs
}

func parseStreamInf(attrs string) model.StreamDescriptor {
	kv := parseAttrList(attrs)
	d := model.StreamDescriptor{Source: model.SourceHLS}

	if bw, err := strconv.ParseInt(kv["BANDWIDTH"], 10, 64); err == nil {
		d.Bitrate = bw
	}
	if w, h, ok := strings.Cut(kv["RESOLUTION"], "x"); ok {
		d.Width, _ = strconv.Atoi(w)
		d.Height, _ = strconv.Atoi(h)
	}
	if fr, err := strconv.ParseFloat(kv["FRAME-RATE"], 64); err == nil {
		d.FPS = int(fr)
	}
	if codecs := strings.Trim(kv["CODECS"], `"`); codecs != "" {
		for _, tok := range strings.Split(codecs, ",") {
			tok = strings.TrimSpace(tok)
			if isAudioCodecToken(tok) {
				d.AudioCodec = tok
			} else if tok != "" {
				d.VideoCodec = tok
			}
		}
	}
	return d
}

// defaultHLSAudioCodec is the codec assumed for an audio group whose
// referencing variants never spell it out in CODECS; AAC-LC is the
// platform's de facto default for HLS audio groups.
const defaultHLSAudioCodec = "mp4a.40.2"

func parseAudioMedia(attrs string, groupCodecs map[string]string) *model.StreamDescriptor {
	kv := parseAttrList(attrs)
	uri := strings.Trim(kv["URI"], `"`)
	if uri == "" {
		return nil
	}
	groupID := strings.Trim(kv["GROUP-ID"], `"`)
	d := &model.StreamDescriptor{
		URL:       uri,
		Source:    model.SourceHLS,
		AudioOnly: true,
	}
	if lang := strings.Trim(kv["LANGUAGE"], `"`); lang != "" {
		d.AudioTrack = &model.AudioTrack{
			Language: lang,
			ID:       groupID,
			Default:  strings.Trim(kv["DEFAULT"], `"`) == "YES",
		}
	}
	if codec, ok := groupCodecs[groupID]; ok {
		d.AudioCodec = codec
	} else {
		d.AudioCodec = defaultHLSAudioCodec
	}
	return d
}

// parseAttrList splits a comma-separated ATTR=VALUE list, respecting
// double-quoted values that may themselves contain commas.
func parseAttrList(s string) map[string]string {
	out := make(map[string]string)
	var key strings.Builder
	var val strings.Builder
	inValue := false
	inQuotes := false

	flush := func() {
		if key.Len() > 0 {
			out[key.String()] = val.String()
		}
		key.Reset()
		val.Reset()
		inValue = false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			val.WriteByte(c)
		case c == '=' && !inValue && !inQuotes:
			inValue = true
		case c == ',' && !inQuotes:
			flush()
		case inValue:
			val.WriteByte(c)
		default:
			key.WriteByte(c)
		}
	}
	flush()
	return out
}
