package descramble

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/corestream/ytv1/internal/scriptvm"
)

// Descrambler resolves the n and signature-cipher parameters that gate a
// descriptor's playback URL, delegating actual execution to a sandboxed
// JavaScript evaluator instead of a hand-rolled opcode interpreter or a
// second full player-module runtime.
type Descrambler struct {
	vm    *scriptvm.Evaluator
	cache *Cache
}

// New returns a Descrambler backed by the given evaluator and a fresh
// per-call cache.
func New(vm *scriptvm.Evaluator) *Descrambler {
	return &Descrambler{vm: vm, cache: NewCache()}
}

// DescrambleN resolves the "n" parameter and returns its replacement.
func (d *Descrambler) DescrambleN(ctx context.Context, playerJS, n string) (string, error) {
	key := playerJSKey(playerJS)
	if out, ok := d.cache.getValue("n", key, n); ok {
		return out, nil
	}

	source, err := d.functionSource("n", key, playerJS, LocateNFunction)
	if err != nil {
		return "", err
	}

	out, err := d.vm.Run(ctx, source, n)
	if err != nil {
		return "", fmt.Errorf("descramble: n-function evaluation: %w", err)
	}
	d.cache.putValue("n", key, n, out)
	return out, nil
}

// DescrambleSignature resolves the signature-cipher "s" parameter.
func (d *Descrambler) DescrambleSignature(ctx context.Context, playerJS, s string) (string, error) {
	key := playerJSKey(playerJS)
	if out, ok := d.cache.getValue("sig", key, s); ok {
		return out, nil
	}

	source, err := d.functionSource("sig", key, playerJS, LocateSignatureFunction)
	if err != nil {
		return "", err
	}

	out, err := d.vm.Run(ctx, source, s)
	if err != nil {
		return "", fmt.Errorf("descramble: signature function evaluation: %w", err)
	}
	d.cache.putValue("sig", key, s, out)
	return out, nil
}

// ApplyCipher rebuilds the final playback URL from a signatureCipher (or
// cipher) query string: descrambles its "s" value and attaches it to the
// base URL under the parameter name the cipher specifies.
func (d *Descrambler) ApplyCipher(ctx context.Context, playerJS, cipher string) (string, error) {
	values, err := url.ParseQuery(cipher)
	if err != nil {
		return "", fmt.Errorf("descramble: malformed cipher: %w", err)
	}
	baseURL := values.Get("url")
	sig := values.Get("s")
	sigParam := values.Get("sp")
	if sigParam == "" {
		sigParam = "signature"
	}
	if baseURL == "" || sig == "" {
		return "", fmt.Errorf("descramble: cipher missing url or s")
	}

	decoded, err := d.DescrambleSignature(ctx, playerJS, sig)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("descramble: malformed base url: %w", err)
	}
	q := u.Query()
	q.Set(sigParam, decoded)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ApplyNParam rewrites the "n" query parameter of an already-complete
// playback URL in place, for descriptors that only need n-descrambling.
func (d *Descrambler) ApplyNParam(ctx context.Context, playerJS, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("descramble: malformed url: %w", err)
	}
	q := u.Query()
	n := q.Get("n")
	if n == "" {
		return rawURL, nil
	}
	decoded, err := d.DescrambleN(ctx, playerJS, n)
	if err != nil {
		return "", err
	}
	q.Set("n", decoded)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (d *Descrambler) functionSource(kind, key, playerJS string, locate func(string) (string, error)) (string, error) {
	if src, ok := d.cache.getFunction(kind, key); ok {
		return src, nil
	}
	src, err := locate(playerJS)
	if err != nil {
		return "", err
	}
	d.cache.putFunction(kind, key, src)
	return src, nil
}

// playerJSKey fingerprints a player script body so the cache can key on it
// without retaining or comparing the (potentially large) script itself.
func playerJSKey(playerJS string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(playerJS)))
	return hex.EncodeToString(sum[:])
}
