package resolver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/corestream/ytv1/internal/parse"
	"github.com/corestream/ytv1/internal/transport"
)

const watchPageBaseURL = "https://www.youtube.com/watch"
const playerScriptBaseURL = "https://www.youtube.com"

// fetchWatchPage issues the watch-page GET and parses it.
func fetchWatchPage(ctx context.Context, t *transport.Transport, videoID string) ([]byte, parse.WatchPage, error) {
	rawURL := fmt.Sprintf("%s?v=%s&bpctr=9999999999&has_verified=1", watchPageBaseURL, transport.EscapeQueryValue(videoID))
	headers := http.Header{"Cookie": []string{"PREF=hl=en"}}

	body, err := t.Get(ctx, rawURL, headers)
	if err != nil {
		return nil, parse.WatchPage{}, err
	}
	page, err := parse.ParseWatchPage(body)
	if err != nil {
		return nil, parse.WatchPage{}, err
	}
	return body, page, nil
}

// fetchPlayerScript resolves a (possibly relative) player script URL
// against the platform host and returns its JS text.
func fetchPlayerScript(ctx context.Context, t *transport.Transport, scriptURL string) (string, error) {
	full := scriptURL
	if !strings.HasPrefix(full, "http://") && !strings.HasPrefix(full, "https://") {
		full = playerScriptBaseURL + scriptURL
	}
	body, err := t.Get(ctx, full, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
