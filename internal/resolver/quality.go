package resolver

import (
	"strconv"

	"github.com/corestream/ytv1/internal/model"
)

// qualityFromLabel maps a platform quality label ("1080p60", "hd720", ...)
// to the coarse Quality ranking. It extracts the first contiguous run of
// digits in the label (so "1080p60" reads 1080, not a failed parse of the
// whole string) and falls back to qualityFromResolution when the label
// carries no digit run at all.
func qualityFromLabel(label string) model.Quality {
	start, end := -1, -1
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c >= '0' && c <= '9' {
			if start == -1 {
				start = i
			}
			end = i + 1
		} else if start != -1 {
			break
		}
	}
	if start == -1 {
		return model.QualityUnknown
	}
	n, err := strconv.Atoi(label[start:end])
	if err != nil {
		return model.QualityUnknown
	}
	return qualityFromHeight(n)
}

// qualityFromResolution derives a Quality from width/height when no usable
// label was present.
func qualityFromResolution(width, height int) model.Quality {
	if height == 0 && width > 0 {
		height = width * 9 / 16
	}
	return qualityFromHeight(height)
}

func qualityFromHeight(height int) model.Quality {
	switch {
	case height <= 0:
		return model.QualityUnknown
	case height <= 240:
		return model.QualityLow
	case height <= 480:
		return model.QualitySD
	case height <= 720:
		return model.QualityHD
	case height <= 1080:
		return model.QualityFullHD
	case height <= 1440:
		return model.QualityQuadHD
	case height <= 2160:
		return model.Quality4K
	default:
		return model.Quality8K
	}
}
