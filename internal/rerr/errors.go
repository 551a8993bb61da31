// Package rerr defines the error taxonomy raised by the stream manifest
// resolver. Errors are typed structs rather than sentinel values so
// callers can recover structured detail with errors.As.
package rerr

import "fmt"

// ArgumentError indicates a malformed video id. Raised immediately, never
// retried.
type ArgumentError struct {
	Input  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument error: input=%q reason=%s", e.Input, e.Reason)
}

// TransientFailure wraps a network error, 5xx response, or parse hiccup
// with a recoverable shape. The retry wrapper in internal/transport is the
// only place that should construct and then absorb this error; if it
// escapes a retry loop it means the retry budget was exhausted.
type TransientFailure struct {
	Cause error
}

func (e *TransientFailure) Error() string {
	return fmt.Sprintf("transient failure: %v", e.Cause)
}

func (e *TransientFailure) Unwrap() error { return e.Cause }

// VideoUnavailableError indicates all personas were exhausted without
// producing any streams. Terminal.
type VideoUnavailableError struct {
	// LastCause is the most recent persona-scoped failure observed before
	// giving up, if any.
	LastCause error
}

func (e *VideoUnavailableError) Error() string {
	if e.LastCause != nil {
		return fmt.Sprintf("video unavailable: %v", e.LastCause)
	}
	return "video unavailable"
}

func (e *VideoUnavailableError) Unwrap() error { return e.LastCause }

// VideoUnplayableError indicates the platform reports the video is not
// playable, with a status-provided reason. It aborts the remaining
// personas in the current list, but GetManifest's secondary tvEmbedded
// fallback list still runs.
type VideoUnplayableError struct {
	Persona string
	Reason  string
}

func (e *VideoUnplayableError) Error() string {
	return fmt.Sprintf("video unplayable: persona=%s reason=%s", e.Persona, e.Reason)
}

// VideoRequiresPurchaseError indicates the primary content is gated behind
// purchase. Terminal for the whole call.
type VideoRequiresPurchaseError struct {
	Persona string
	Preview string // preview video id, if the platform supplied one
}

func (e *VideoRequiresPurchaseError) Error() string {
	if e.Preview != "" {
		return fmt.Sprintf("video requires purchase: persona=%s preview=%s", e.Persona, e.Preview)
	}
	return fmt.Sprintf("video requires purchase: persona=%s", e.Persona)
}

// NotLiveStreamError indicates an HLS URL was requested for a video that
// is not a live stream. Terminal.
type NotLiveStreamError struct {
	VideoID string
}

func (e *NotLiveStreamError) Error() string {
	return fmt.Sprintf("not a live stream: video=%s", e.VideoID)
}

// CodecExtractionError indicates a descriptor could not be normalized
// because it carries neither an audio nor a video codec. Persona-scoped:
// the resolver discards that persona's whole staging manifest, logs it,
// and moves on to the next persona in the list.
type CodecExtractionError struct {
	Persona string
	Itag    int
}

func (e *CodecExtractionError) Error() string {
	return fmt.Sprintf("codec extraction failed: persona=%s itag=%d", e.Persona, e.Itag)
}

// ScriptTimeoutError indicates a descrambling snippet exceeded its
// instruction budget. Treated as a persona failure.
type ScriptTimeoutError struct {
	Budget int
}

func (e *ScriptTimeoutError) Error() string {
	return fmt.Sprintf("script evaluation exceeded instruction budget (%d)", e.Budget)
}

// CancelledError indicates the caller's cancellation signal fired while a
// call was in flight. Terminal.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("cancelled: %v", e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }

// PersonaRejectedError indicates a persona's first probed URL returned a
// 403 (signature rejection); the resolver discards that persona's
// contributions and continues.
type PersonaRejectedError struct {
	Persona string
}

func (e *PersonaRejectedError) Error() string {
	return fmt.Sprintf("persona rejected on HEAD probe (403): persona=%s", e.Persona)
}
