// Package model holds the data types shared across the resolver pipeline:
// personas, raw player responses, and the normalized stream manifest.
package model

// PersonaName identifies one of the synthetic client identities the
// resolver can impersonate when querying the player endpoint.
type PersonaName string

const (
	PersonaIOS        PersonaName = "ios"
	PersonaAndroid    PersonaName = "android"
	PersonaTVEmbedded PersonaName = "tvEmbedded"
	PersonaWeb        PersonaName = "web"
)

// ClientPayload is the opaque per-persona context object embedded verbatim
// in the player-endpoint request body.
type ClientPayload struct {
	ClientName    string
	ClientVersion string
	Locale        string
	Platform      string
	DeviceMake    string
	DeviceModel   string
	OSName        string
	OSVersion     string
	UserAgent     string
	EmbedURL      string
}

// ClientPersona is an immutable, process-long record describing one
// synthetic client identity.
type ClientPersona struct {
	Name PersonaName

	// APIKey is the persona-dependent player-endpoint key.
	APIKey string
	// Host is the upstream host this persona talks to.
	Host string

	Payload ClientPayload

	// RequiresDescramble indicates whether signed URLs returned to this
	// persona need n/signature descrambling via the watch page before
	// they are playable.
	RequiresDescramble bool
}
