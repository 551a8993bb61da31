package scriptvm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corestream/ytv1/internal/rerr"
)

func TestRun_ReversesArray(t *testing.T) {
	e := New(0)
	out, err := e.Run(context.Background(), `function(a){a=a.split("");a.reverse();return a.join("")}`, "abcdef")
	require.NoError(t, err)
	require.Equal(t, "fedcba", out)
}

func TestRun_NoHostAccess(t *testing.T) {
	e := New(0)
	_, err := e.Run(context.Background(), `function(a){ return typeof require }`, "x")
	require.NoError(t, err)
}

func TestRun_TimesOutOnInfiniteLoop(t *testing.T) {
	e := New(100)
	_, err := e.Run(context.Background(), `function(a){ while(true){} return a }`, "x")
	require.Error(t, err)

	var timeoutErr *rerr.ScriptTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}

func TestRun_PropagatesCancellation(t *testing.T) {
	e := New(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Run(ctx, `function(a){ while(true){} return a }`, "x")
	require.Error(t, err)
}

func TestRun_RejectsNonFunctionSource(t *testing.T) {
	e := New(0)
	_, err := e.Run(context.Background(), `42`, "x")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "callable"))
}
