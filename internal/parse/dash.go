package parse

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/corestream/ytv1/internal/model"
)

// dashMPD mirrors the small slice of the MPEG-DASH schema the resolver
// actually consumes: one AdaptationSet per media type, one Representation
// per rendition, with either a single BaseURL (progressive-like) or a
// SegmentList of discrete fragment URLs.
type dashMPD struct {
	Periods []struct {
		AdaptationSets []struct {
			MimeType        string `xml:"mimeType,attr"`
			Representations []struct {
				ID          string `xml:"id,attr"`
				Bandwidth   int64  `xml:"bandwidth,attr"`
				Width       int    `xml:"width,attr"`
				Height      int    `xml:"height,attr"`
				FrameRate   string `xml:"frameRate,attr"`
				Codecs      string `xml:"codecs,attr"`
				BaseURL     string `xml:"BaseURL"`
				SegmentList *struct {
					Initialization *struct {
						SourceURL string `xml:"sourceURL,attr"`
					} `xml:"Initialization"`
					SegmentURLs []struct {
						Media string `xml:"media,attr"`
					} `xml:"SegmentURL"`
				} `xml:"SegmentList"`
			} `xml:"Representation"`
		} `xml:"AdaptationSet"`
	} `xml:"Period"`
}

// ParseDASH decodes an MPEG-DASH manifest into one StreamDescriptor per
// Representation. Itag is synthesized from the Representation id since
// DASH manifests don't carry the platform's itag numbering.
func ParseDASH(body []byte) ([]model.StreamDescriptor, error) {
	var mpd dashMPD
	if err := xml.Unmarshal(body, &mpd); err != nil {
		return nil, fmt.Errorf("parse: dash manifest: %w", err)
	}

	var out []model.StreamDescriptor
	for _, period := range mpd.Periods {
		for _, set := range period.AdaptationSets {
			isAudio := strings.HasPrefix(set.MimeType, "audio/")
			isVideo := strings.HasPrefix(set.MimeType, "video/")
			container, _, _ := splitMimeType(set.MimeType)

			for _, rep := range set.Representations {
				d := model.StreamDescriptor{
					Itag:      itagFromRepresentationID(rep.ID),
					Container: container,
					Bitrate:   rep.Bandwidth,
					Width:     rep.Width,
					Height:    rep.Height,
					FPS:       parseFrameRate(rep.FrameRate),
					Source:    model.SourceAdaptive,
					AudioOnly: isAudio,
					VideoOnly: isVideo,
					URL:       rep.BaseURL,
				}
				if isAudio {
					d.AudioCodec = rep.Codecs
				} else {
					d.VideoCodec = rep.Codecs
				}

				if rep.SegmentList != nil {
					if rep.SegmentList.Initialization != nil {
						d.Fragments = append(d.Fragments, model.Fragment{URL: rep.SegmentList.Initialization.SourceURL})
					}
					for _, seg := range rep.SegmentList.SegmentURLs {
						d.Fragments = append(d.Fragments, model.Fragment{URL: seg.Media})
					}
				}

				out = append(out, d)
			}
		}
	}
	return out, nil
}

func itagFromRepresentationID(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0
	}
	return n
}

func parseFrameRate(raw string) int {
	if raw == "" {
		return 0
	}
	num, den, ok := strings.Cut(raw, "/")
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.Atoi(den)
	if err != nil || d == 0 {
		return n
	}
	return n / d
}
