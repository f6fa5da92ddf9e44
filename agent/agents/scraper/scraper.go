// Package scraper implements the agent unit that turns a profile URL into a
// validated Profile snapshot via the external scrape capability.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/careerninja/learntube/agent/contract"
	schemax "github.com/careerninja/learntube/agent/schema"
)

type Config struct {
	MaxAttempts     int           `envconfig:"MAX_ATTEMPTS" split_words:"true" default:"3"`
	InitialInterval time.Duration `envconfig:"INITIAL_INTERVAL" split_words:"true" default:"500ms"`
	MaxInterval     time.Duration `envconfig:"MAX_INTERVAL" split_words:"true" default:"5s"`
}

type Agent struct {
	client contractx.ScrapeClient
	cfg    Config
}

var _ contractx.AgentUnit = (*Agent)(nil)

func New(client contractx.ScrapeClient, cfg Config) *Agent {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	return &Agent{client: client, cfg: cfg}
}

func (a *Agent) Name() contractx.AgentName {
	return contractx.AgentScraper
}

// Run scrapes the given URL. Transient failures (network, rate limit,
// timeout) are retried with bounded exponential backoff; an invalid URL or a
// missing profile is permanent and surfaced as its own error kind so the
// orchestrator does not loop.
func (a *Agent) Run(ctx context.Context, snap contractx.Snapshot, input contractx.TurnInput) (contractx.Delta, error) {
	profileURL, err := normalizeURL(input.ProfileURL)
	if err != nil {
		return contractx.Delta{}, err
	}

	var raw contractx.RawProfile
	operation := func() error {
		var scrapeErr error
		raw, scrapeErr = a.client.Scrape(ctx, profileURL)
		switch {
		case scrapeErr == nil:
			return nil
		case isTransient(scrapeErr):
			log.Warn().Err(scrapeErr).Str("url", profileURL).Msg("scrape attempt failed, will retry")
			return scrapeErr
		default:
			return backoff.Permanent(scrapeErr)
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = a.cfg.InitialInterval
	policy.MaxInterval = a.cfg.MaxInterval

	err = backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(a.cfg.MaxAttempts-1)), ctx))
	if err != nil {
		return contractx.Delta{}, err
	}

	profile := &contractx.Profile{
		ID:         uuid.NewString(),
		URL:        profileURL,
		Name:       raw.Name,
		Headline:   raw.Headline,
		About:      raw.About,
		Experience: raw.Experience,
		Skills:     raw.Skills,
		Education:  raw.Education,
		ScrapedAt:  snap.Now.UTC(),
	}
	if err := schemax.Validate(profile); err != nil {
		return contractx.Delta{}, err
	}

	return contractx.Delta{
		Profile:  profile,
		Response: fmt.Sprintf("Fetched the profile for %s.", displayName(profile)),
	}, nil
}

func normalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: url is empty", contractx.ErrInvalidProfileURL)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrInvalidProfileURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", contractx.ErrInvalidProfileURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: missing host", contractx.ErrInvalidProfileURL)
	}
	return parsed.String(), nil
}

func isTransient(err error) bool {
	return errors.Is(err, contractx.ErrTransientIO)
}

func displayName(p *contractx.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	return p.URL
}
