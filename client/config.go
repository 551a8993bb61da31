package client

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/corestream/ytv1/internal/resolver"
	"github.com/corestream/ytv1/internal/scriptvm"
	"github.com/corestream/ytv1/internal/transport"
)

// Config holds the settings a caller can tune when constructing a Client.
// Zero values are replaced with the defaults documented on each field.
type Config struct {
	// HTTPClient is the client used for every request the resolver issues.
	// If nil, a client built from ProxyURL (or http.DefaultClient) is used.
	HTTPClient *http.Client

	// ProxyURL routes all requests through an HTTP/HTTPS proxy. Ignored if
	// HTTPClient is set.
	ProxyURL string

	// Retry overrides the HTTP transport's retry/backoff policy.
	Retry transport.RetryConfig

	// InstructionBudget overrides the descrambling evaluator's bound on
	// interpreter work (default scriptvm.DefaultInstructionBudget).
	InstructionBudget int

	// CallTimeout overrides the end-to-end deadline for one GetManifest
	// call (default resolver.DefaultCallTimeout).
	CallTimeout time.Duration

	// Logger receives structured diagnostics. A nil Logger is replaced
	// with zap.NewNop().
	Logger *zap.Logger
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return defaultHTTPClient(c.ProxyURL)
}

func defaultHTTPClient(proxyURL string) *http.Client {
	if strings.TrimSpace(proxyURL) == "" {
		return http.DefaultClient
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return http.DefaultClient
	}
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultClient
	}
	rt := baseTransport.Clone()
	rt.Proxy = http.ProxyURL(parsed)
	return &http.Client{Transport: rt}
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c Config) instructionBudget() int {
	if c.InstructionBudget > 0 {
		return c.InstructionBudget
	}
	return scriptvm.DefaultInstructionBudget
}

func (c Config) callTimeout() time.Duration {
	if c.CallTimeout > 0 {
		return c.CallTimeout
	}
	return resolver.DefaultCallTimeout
}
