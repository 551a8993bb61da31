package descramble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corestream/ytv1/internal/scriptvm"
)

// samplePlayerJS is a minimal, self-contained fragment shaped like a real
// player script: an n-function assignment and a signature-cipher
// object+function pair, using only the constructs the locator regexes
// target. It is not upstream source, only a fixture in the same shape.
const samplePlayerJS = `
var _w={};
(function(){
if(a.get("n"))&&(b=XyZ(b));
function somethingElse(){}
XyZ=function(b){return b.split("").reverse().join("")};
var Dz={
  aB:function(a){a.reverse()},
  cD:function(a,b){a.splice(0,b)},
  eF:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c}
};
function ghKl(a){a=a.split("");Dz.cD(a,3);Dz.aB(a);return a.join("")}
})();
`

func TestLocateNFunction_ExtractsAssignmentBody(t *testing.T) {
	src, err := LocateNFunction(samplePlayerJS)
	require.NoError(t, err)
	require.Contains(t, src, "XyZ=function(b)")
}

func TestLocateSignatureFunction_CombinesObjectAndFunction(t *testing.T) {
	src, err := LocateSignatureFunction(samplePlayerJS)
	require.NoError(t, err)
	require.Contains(t, src, "var Dz=")
	require.Contains(t, src, "function ghKl(a)")
}

func TestDescrambler_DescrambleN_ReversesInput(t *testing.T) {
	d := New(scriptvm.New(0))
	out, err := d.DescrambleN(context.Background(), samplePlayerJS, "abcdef")
	require.NoError(t, err)
	require.Equal(t, "fedcba", out)
}

func TestDescrambler_DescrambleN_CachesFunctionSource(t *testing.T) {
	d := New(scriptvm.New(0))
	_, err := d.DescrambleN(context.Background(), samplePlayerJS, "one")
	require.NoError(t, err)

	key := playerJSKey(samplePlayerJS)
	_, ok := d.cache.getFunction("n", key)
	require.True(t, ok)
}

func TestDescrambler_ApplyNParam_NoOpWithoutNQueryParam(t *testing.T) {
	d := New(scriptvm.New(0))
	out, err := d.ApplyNParam(context.Background(), samplePlayerJS, "https://example.invalid/videoplayback?itag=18")
	require.NoError(t, err)
	require.Equal(t, "https://example.invalid/videoplayback?itag=18", out)
}
