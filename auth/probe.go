package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Strategy is the login method a client should offer.
type Strategy string

const (
	StrategyRemote Strategy = "github"
	StrategyLocal  Strategy = "local"
)

// ProbeResult is the connectivity probe's advice.
type ProbeResult struct {
	Online bool     `json:"online"`
	Method Strategy `json:"method"`
}

const (
	DefaultProbeURL     = "https://api.github.com"
	DefaultProbeTimeout = 3 * time.Second
)

// Prober checks whether the identity provider is reachable.
type Prober struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

func NewProber(url string, timeout time.Duration) *Prober {
	if url == "" {
		url = DefaultProbeURL
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{
		client:  &http.Client{},
		url:     url,
		timeout: timeout,
	}
}

// Probe issues one GET bounded by the probe timeout. Any 2xx means the remote strategy is
// viable; every other outcome, including a timeout, advises the local one.
func (p *Prober) Probe(ctx context.Context) ProbeResult {
	offline := ProbeResult{Online: false, Method: StrategyLocal}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		log.Error().Err(err).Str("url", p.url).Msg("Failed to build probe request")
		return offline
	}

	resp, err := p.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", p.url).Msg("Probe failed")
		return offline
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug().Int("status", resp.StatusCode).Str("url", p.url).Msg("Probe returned non-success status")
		return offline
	}

	return ProbeResult{Online: true, Method: StrategyRemote}
}
