package resolver

import (
	"regexp"
	"strings"

	"github.com/corestream/ytv1/internal/rerr"
)

// videoIDPattern matches a bare 11-character id; watchURLPattern extracts
// one from a watch URL, shorts URL, or youtu.be short link.
var (
	videoIDPattern  = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
	watchURLPattern = regexp.MustCompile(`(?:v=|/shorts/|youtu\.be/)([0-9A-Za-z_-]{11})`)
)

// normalizeVideoID accepts a raw id or a common watch-URL shape and
// returns the bare 11-character id, or an ArgumentError if neither matches.
func normalizeVideoID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", &rerr.ArgumentError{Input: input, Reason: "empty"}
	}
	if videoIDPattern.MatchString(s) {
		return s, nil
	}
	if m := watchURLPattern.FindStringSubmatch(s); len(m) == 2 {
		return m[1], nil
	}
	return "", &rerr.ArgumentError{Input: input, Reason: "not a well-formed video id or watch url"}
}
