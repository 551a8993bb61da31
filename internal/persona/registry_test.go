package persona

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corestream/ytv1/internal/model"
)

func TestRegistry_HasAllFourPersonas(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []model.PersonaName{model.PersonaIOS, model.PersonaAndroid, model.PersonaTVEmbedded, model.PersonaWeb} {
		p, ok := reg.Get(name)
		require.True(t, ok, "persona %s missing", name)
		require.Equal(t, name, p.Name)
	}
}

func TestRegistry_TVEmbeddedAndWebRequireDescramble(t *testing.T) {
	reg := NewRegistry()
	tv, _ := reg.Get(model.PersonaTVEmbedded)
	require.True(t, tv.RequiresDescramble)
	web, _ := reg.Get(model.PersonaWeb)
	require.True(t, web.RequiresDescramble)
	ios, _ := reg.Get(model.PersonaIOS)
	require.False(t, ios.RequiresDescramble)
}

func TestNewPlayerRequest_EmbedsVideoIDAndClientName(t *testing.T) {
	reg := NewRegistry()
	p, _ := reg.Get(model.PersonaAndroid)
	req := NewPlayerRequest(p, "dQw4w9WgXcQ")
	require.Equal(t, "dQw4w9WgXcQ", req.VideoID)
	require.Equal(t, "ANDROID", req.Context.Client.ClientName)
}
