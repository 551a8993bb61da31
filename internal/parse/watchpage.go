// Package parse implements pure functions from upstream bytes to
// structured values: watch page HTML, the player JSON response, and
// DASH/HLS manifests. Extraction is done with goquery/gjson rather than
// ad-hoc byte scanning and full struct unmarshaling.
package parse

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// WatchPage holds the fields extracted from the watch page HTML that the
// resolver needs: the inline player response JSON (if the platform chose
// to embed one), the base player script URL, and the video id as echoed
// by the page itself.
type WatchPage struct {
	InlinePlayerResponseJSON []byte // nil if not present
	PlayerScriptURL          string
	VideoID                  string
}

var (
	playerScriptSrcPattern  = regexp.MustCompile(`(/s/player/[A-Za-z0-9_-]+/[A-Za-z0-9._/-]*/base\.js)`)
	canonicalVideoIDPattern = regexp.MustCompile(`[?&]v=([0-9A-Za-z_-]{11})`)

	// Sentinel key bounding the inline player response blob, if the page
	// embeds one.
	playerResponseSentinelStart = []byte("ytInitialPlayerResponse")
)

// ParseWatchPage extracts the fields the resolver needs from a watch page
// document.
func ParseWatchPage(html []byte) (WatchPage, error) {
	var page WatchPage

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		// The watch page is best-effort source material; a malformed
		// document degrades to "nothing extracted" rather than a hard
		// parse failure.
		return page, nil
	}

	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if page.PlayerScriptURL == "" {
			if m := playerScriptSrcPattern.FindString(text); m != "" {
				page.PlayerScriptURL = m
			}
		}
		if page.InlinePlayerResponseJSON == nil {
			if blob := extractAssignedJSON(text, playerResponseSentinelStart); blob != nil {
				page.InlinePlayerResponseJSON = blob
			}
		}
		return page.PlayerScriptURL == "" || page.InlinePlayerResponseJSON == nil
	})

	if page.PlayerScriptURL == "" {
		doc.Find("script[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			src, _ := sel.Attr("src")
			if playerScriptSrcPattern.MatchString(src) {
				page.PlayerScriptURL = playerScriptSrcPattern.FindString(src)
				return false
			}
			return true
		})
	}

	doc.Find(`link[rel="canonical"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if m := canonicalVideoIDPattern.FindStringSubmatch(href); len(m) == 2 {
			page.VideoID = m[1]
			return false
		}
		return true
	})

	return page, nil
}

// extractAssignedJSON finds "<sentinel> = { ... };" (or the var-declaration
// variants the platform has used over time) inside script text and returns
// the brace-balanced object literal bytes, or nil if not found.
func extractAssignedJSON(scriptText string, sentinel []byte) []byte {
	idx := strings.Index(scriptText, string(sentinel))
	if idx < 0 {
		return nil
	}
	rest := scriptText[idx+len(sentinel):]
	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return nil
	}
	rest = rest[eq+1:]
	start := strings.IndexByte(rest, '{')
	if start < 0 {
		return nil
	}
	rest = rest[start:]

	depth := 0
	var strCh byte
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch c {
		case '{':
			if strCh == 0 {
				depth++
			}
		case '}':
			if strCh == 0 {
				depth--
				if depth == 0 {
					return []byte(rest[:i+1])
				}
			}
		case '"', '\'':
			if strCh == 0 {
				strCh = c
			} else if strCh == c && (i == 0 || rest[i-1] != '\\') {
				strCh = 0
			}
		}
	}
	return nil
}
