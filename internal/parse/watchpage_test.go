package parse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleWatchPage = `<!DOCTYPE html>
<html><head>
<link rel="canonical" href="https://www.youtube.com/watch?v=dQw4w9WgXcQ">
</head><body>
<script src="/s/player/abc12345/player_ias.vflset/en_US/base.js"></script>
<script>
var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"},"streamingData":{"formats":[]}};
</script>
</body></html>`

func TestParseWatchPage_ExtractsAllThreeFields(t *testing.T) {
	page, err := ParseWatchPage([]byte(sampleWatchPage))
	require.NoError(t, err)
	require.Equal(t, "dQw4w9WgXcQ", page.VideoID)
	require.Equal(t, "/s/player/abc12345/player_ias.vflset/en_US/base.js", page.PlayerScriptURL)
	require.Contains(t, string(page.InlinePlayerResponseJSON), `"status":"OK"`)
}

func TestParseWatchPage_MissingInlineJSONIsNotAnError(t *testing.T) {
	page, err := ParseWatchPage([]byte(`<html><body>no player here</body></html>`))
	require.NoError(t, err)
	require.Nil(t, page.InlinePlayerResponseJSON)
	require.Empty(t, page.PlayerScriptURL)
}
