// Package resolver is the manifest resolver: the orchestrator that drives
// the persona registry, stream controller, parsers, and descrambler into
// one deduplicated StreamManifest per video id. Personas are walked
// sequentially, accumulating results, rather than raced concurrently —
// each persona's HTTP traffic and failure mode is distinct enough that
// racing them would waste requests against personas that were never going
// to be needed.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/corestream/ytv1/internal/descramble"
	"github.com/corestream/ytv1/internal/model"
	"github.com/corestream/ytv1/internal/parse"
	"github.com/corestream/ytv1/internal/persona"
	"github.com/corestream/ytv1/internal/rerr"
	"github.com/corestream/ytv1/internal/scriptvm"
	"github.com/corestream/ytv1/internal/streamctl"
	"github.com/corestream/ytv1/internal/transport"
)

// DefaultCallTimeout bounds one GetManifest call end to end.
const DefaultCallTimeout = 60 * time.Second

// Resolver is the entry point for stream manifest resolution. One Resolver
// can be reused concurrently across many independent GetManifest calls:
// the transport is the only shared resource, and it is safe for
// concurrent use by construction.
type Resolver struct {
	transport   *transport.Transport
	registry    persona.Registry
	controller  *streamctl.Controller
	vmBudget    int
	callTimeout time.Duration
	log         *zap.Logger
}

// ConstructOption configures a Resolver at construction time, as opposed
// to Option which configures a single GetManifest call.
type ConstructOption func(*Resolver)

// WithInstructionBudget overrides the descrambling evaluator's bound on
// interpreter work for every call this Resolver makes.
func WithInstructionBudget(budget int) ConstructOption {
	return func(r *Resolver) { r.vmBudget = budget }
}

// WithCallTimeout overrides the end-to-end deadline applied to every
// GetManifest call.
func WithCallTimeout(d time.Duration) ConstructOption {
	return func(r *Resolver) { r.callTimeout = d }
}

// New builds a Resolver. A nil logger is replaced with a no-op one.
func New(t *transport.Transport, log *zap.Logger, opts ...ConstructOption) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		transport:   t,
		registry:    persona.NewRegistry(),
		controller:  streamctl.New(t, log),
		vmBudget:    scriptvm.DefaultInstructionBudget,
		callTimeout: DefaultCallTimeout,
		log:         log,
	}
	for _, apply := range opts {
		apply(r)
	}
	return r
}

// Option configures a single GetManifest call.
type Option func(*callOptions)

type callOptions struct {
	personas         []model.PersonaName
	requireWatchPage bool
}

// WithPersonas overrides the default [ios, android] primary persona list.
func WithPersonas(names ...model.PersonaName) Option {
	return func(o *callOptions) { o.personas = names }
}

// WithRequireWatchPage controls whether the watch page is fetched eagerly
// once per persona (true, the default) or lazily on first need (false).
func WithRequireWatchPage(v bool) Option {
	return func(o *callOptions) { o.requireWatchPage = v }
}

// callState holds everything scoped to one GetManifest invocation: the
// lazily-fetched watch page/player script and the per-call descrambling
// caches. Each call owns its own state; nothing here is shared across
// concurrent calls.
type callState struct {
	videoID string

	watchPageFetched bool
	watchPageHTML    []byte
	watchPage        parse.WatchPage
	watchPageErr     error

	playerJSFetched bool
	playerJS        string
	playerJSErr     error

	descrambler *descramble.Descrambler
}

// GetManifest resolves videoID into a deduplicated StreamManifest.
func (r *Resolver) GetManifest(ctx context.Context, videoID string, opts ...Option) (*model.StreamManifest, error) {
	id, err := normalizeVideoID(videoID)
	if err != nil {
		return nil, err
	}

	o := callOptions{personas: persona.DefaultPersonas, requireWatchPage: true}
	for _, apply := range opts {
		apply(&o)
	}

	ctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	state := &callState{
		videoID:     id,
		descrambler: descramble.New(scriptvm.New(r.vmBudget)),
	}

	manifest, lastErr, err := r.resolveOverPersonas(ctx, state, o.personas, o.requireWatchPage)
	if err != nil {
		return nil, err
	}

	if manifest.Len() == 0 {
		fallback, fallbackLastErr, fallbackErr := r.resolveOverPersonas(ctx, state, persona.FallbackPersonas, o.requireWatchPage)
		if fallbackErr != nil {
			return nil, fallbackErr
		}
		manifest = fallback
		lastErr = multierr.Append(lastErr, fallbackLastErr)
	}

	if manifest.Len() == 0 {
		return nil, &rerr.VideoUnavailableError{LastCause: lastErr}
	}
	return manifest, nil
}

// resolveOverPersonas walks one persona list and returns the accumulated
// manifest plus every persona-scoped error observed, combined with
// multierr so the eventual VideoUnavailableError can report every
// persona's cause instead of only the last one. A non-nil returned error
// is VideoRequiresPurchaseError, the one call-fatal classification that
// must abort the whole call (a paid preview means no further persona
// would do any better) without letting GetManifest's secondary fallback
// run. VideoUnplayableError only aborts the remaining personas *in this
// list* (an age restriction on ios/android still lets the tvEmbedded
// fallback proceed), so it is folded into lastErr and returned as a
// normal (nil-error) result.
func (r *Resolver) resolveOverPersonas(ctx context.Context, state *callState, names []model.PersonaName, requireWatchPage bool) (*model.StreamManifest, error, error) {
	manifest := model.NewStreamManifest()
	var lastErr error

	for _, name := range names {
		if ctx.Err() != nil {
			return manifest, lastErr, &rerr.CancelledError{Cause: ctx.Err()}
		}

		p, ok := r.registry.Get(name)
		if !ok {
			continue
		}

		if requireWatchPage {
			r.ensureWatchPage(ctx, state)
		}

		resp, err := r.controller.GetPlayerResponse(ctx, p, state.videoID, state.watchPageHTML, watchPageURLFor(state))
		if err != nil {
			r.log.Warn("player response fetch failed", zap.String("persona", string(name)), zap.Error(err))
			lastErr = multierr.Append(lastErr, err)
			continue
		}

		if fatal := classifyFatal(name, resp); fatal != nil {
			var purchaseErr *rerr.VideoRequiresPurchaseError
			if errors.As(fatal, &purchaseErr) {
				return manifest, lastErr, fatal
			}
			r.log.Warn("persona reported unplayable", zap.String("persona", string(name)), zap.Error(fatal))
			lastErr = multierr.Append(lastErr, fatal)
			break
		}

		staging, personaErr := r.collectPersonaStreams(ctx, state, name, resp)
		if personaErr != nil {
			lastErr = multierr.Append(lastErr, personaErr)
		}
		if staging.Len() == 0 {
			continue
		}

		first := staging.Entries()[0]
		status, err := r.transport.Head(ctx, first.URL)
		if err != nil {
			r.log.Warn("head probe failed", zap.String("persona", string(name)), zap.Error(err))
			lastErr = multierr.Append(lastErr, err)
			continue
		}
		if status == http.StatusForbidden {
			rejection := &rerr.PersonaRejectedError{Persona: string(name)}
			r.log.Warn(rejection.Error())
			lastErr = multierr.Append(lastErr, rejection)
			continue
		}

		manifest.Merge(staging)
	}

	return manifest, lastErr, nil
}

// classifyFatal checks a player response for the classifications severe
// enough to stop trying personas outright: a purchase gate, or a
// playability status that isn't OK.
func classifyFatal(name model.PersonaName, resp model.PlayerResponse) error {
	if resp.PreviewVideoID != "" {
		return &rerr.VideoRequiresPurchaseError{Persona: string(name), Preview: resp.PreviewVideoID}
	}
	if strings.Contains(strings.ToLower(resp.PlayabilityError), "payment") {
		return &rerr.VideoRequiresPurchaseError{Persona: string(name)}
	}
	if !resp.IsPlayable {
		return &rerr.VideoUnplayableError{Persona: string(name), Reason: resp.PlayabilityError}
	}
	return nil
}

// collectPersonaStreams gathers descriptors from the player response, then
// DASH, then HLS, and normalizes each into a fresh staging manifest. A
// CodecExtractionError on any one descriptor discards this persona's whole
// contribution rather than just that descriptor: a descriptor with neither
// an audio nor a video codec means this persona's manifest is missing
// something the descriptor parser couldn't identify, and a partially
// populated manifest from an untrustworthy source is worse than none —
// recovery comes from trying the next persona instead.
func (r *Resolver) collectPersonaStreams(ctx context.Context, state *callState, name model.PersonaName, resp model.PlayerResponse) (*model.StreamManifest, error) {
	staging := model.NewStreamManifest()
	var lastErr error

	descriptors := append([]model.StreamDescriptor{}, resp.Streams...)

	if resp.DashManifestURL != "" {
		dashDescs, err := r.controller.GetDashManifest(ctx, resp.DashManifestURL)
		if err != nil {
			r.log.Warn("dash manifest fetch failed", zap.String("persona", string(name)), zap.Error(err))
			lastErr = err
		} else {
			descriptors = append(descriptors, dashDescs...)
		}
	}

	if resp.HLSManifestURL != "" {
		hlsDescs, err := r.controller.GetHLSManifest(ctx, resp.HLSManifestURL)
		if err != nil {
			r.log.Warn("hls manifest fetch failed", zap.String("persona", string(name)), zap.Error(err))
			lastErr = err
		} else {
			descriptors = append(descriptors, hlsDescs...)
		}
	}

	loadPlayerJS := func(ctx context.Context) (string, error) { return r.ensurePlayerScript(ctx, state) }

	for _, d := range descriptors {
		info, err := normalizeDescriptor(ctx, state.videoID, name, d, loadPlayerJS, state.descrambler, r.transport)
		if err != nil {
			if err == errDiscardDescriptor {
				continue
			}
			var codecErr *rerr.CodecExtractionError
			if errors.As(err, &codecErr) {
				r.log.Warn("codec extraction failed, discarding persona", zap.String("persona", string(name)), zap.Int("itag", d.Itag), zap.Error(err))
				return model.NewStreamManifest(), err
			}
			r.log.Warn("descriptor normalization failed", zap.String("persona", string(name)), zap.Int("itag", d.Itag), zap.Error(err))
			lastErr = err
			continue
		}
		staging.Add(info)
	}

	return staging, lastErr
}

// ensureWatchPage fetches the watch page at most once per call.
func (r *Resolver) ensureWatchPage(ctx context.Context, state *callState) {
	if state.watchPageFetched {
		return
	}
	state.watchPageFetched = true
	html, page, err := fetchWatchPage(ctx, r.transport, state.videoID)
	state.watchPageHTML = html
	state.watchPage = page
	state.watchPageErr = err
}

// ensurePlayerScript fetches the watch page (if not already fetched) and
// then the base player script it points to, at most once per call.
func (r *Resolver) ensurePlayerScript(ctx context.Context, state *callState) (string, error) {
	if state.playerJSFetched {
		return state.playerJS, state.playerJSErr
	}
	r.ensureWatchPage(ctx, state)
	if state.watchPageErr != nil {
		state.playerJSFetched = true
		state.playerJSErr = state.watchPageErr
		return "", state.playerJSErr
	}
	if state.watchPage.PlayerScriptURL == "" {
		state.playerJSFetched = true
		state.playerJSErr = fmt.Errorf("resolver: no player script url found in watch page")
		return "", state.playerJSErr
	}

	state.playerJSFetched = true
	state.playerJS, state.playerJSErr = fetchPlayerScript(ctx, r.transport, state.watchPage.PlayerScriptURL)
	return state.playerJS, state.playerJSErr
}

func watchPageURLFor(state *callState) string {
	if !state.watchPageFetched {
		return ""
	}
	return fmt.Sprintf("%s?v=%s", watchPageBaseURL, state.videoID)
}

// GetHLSURL returns the live HLS manifest URL for videoID, if the video is
// currently live. It queries the ios persona's player endpoint directly
// rather than fetching the watch page first; the player response carries
// the HLS manifest URL either way, and the watch page fetch would only add
// a round trip here.
func (r *Resolver) GetHLSURL(ctx context.Context, videoID string) (string, error) {
	id, err := normalizeVideoID(videoID)
	if err != nil {
		return "", err
	}

	p, _ := r.registry.Get(model.PersonaIOS)
	resp, err := r.controller.GetPlayerResponse(ctx, p, id, nil, "")
	if err != nil {
		return "", err
	}
	if !resp.IsPlayable {
		return "", &rerr.VideoUnplayableError{Persona: string(p.Name), Reason: resp.PlayabilityError}
	}
	if resp.HLSManifestURL == "" {
		return "", &rerr.NotLiveStreamError{VideoID: id}
	}
	return resp.HLSManifestURL, nil
}

// GetStream opens a byte stream for a resolved StreamInfo's URL.
func (r *Resolver) GetStream(ctx context.Context, info model.StreamInfo, rangeStart int64) (io.ReadCloser, error) {
	return r.transport.Stream(ctx, info.URL, rangeStart)
}
