// Package apify calls an Apify actor over its synchronous REST endpoint and
// maps the returned items onto the scrape contract.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/careerninja/learntube/agent/contract"
)

const (
	defaultActorID       = "simpleapi~linkedin-profile-scraper"
	maxResponseSizeBytes = 4 << 20
)

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.apify.com/v2"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	ActorID string        `envconfig:"ACTOR_ID" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"90s"`
}

// Client implements contract.ScrapeClient against an Apify actor.
type Client struct {
	baseURL    string
	token      string
	actorID    string
	httpClient *http.Client
}

var _ contractx.ScrapeClient = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("apify base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid apify base url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("apify token is required")
	}

	actorID := strings.TrimSpace(cfg.ActorID)
	if actorID == "" {
		actorID = defaultActorID
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	client := &Client{
		baseURL: baseURL,
		token:   token,
		actorID: actorID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type runInput struct {
	URLs               []string       `json:"urls"`
	ProxyConfiguration map[string]any `json:"proxyConfiguration"`
}

// actorItem is the raw dataset item shape produced by the profile actor.
type actorItem struct {
	FullName    string   `json:"fullName"`
	ProfileName string   `json:"profileName"`
	Headline    string   `json:"headline"`
	Summary     string   `json:"summary"`
	Skills      []string `json:"skills"`
	Experience  []struct {
		Title       string    `json:"title"`
		CompanyName string    `json:"companyName"`
		Description string    `json:"description"`
		StartsAt    actorDate `json:"startsAt"`
		EndsAt      actorDate `json:"endsAt"`
	} `json:"experience"`
	Education []struct {
		SchoolName string    `json:"schoolName"`
		DegreeName string    `json:"degreeName"`
		StartsAt   actorDate `json:"startsAt"`
		EndsAt     actorDate `json:"endsAt"`
	} `json:"education"`
}

type actorDate struct {
	Year int `json:"year"`
}

// Scrape runs the actor synchronously and maps its first dataset item.
// Transport failures and throttling surface as transient errors; an empty
// dataset means the profile does not exist.
func (c *Client) Scrape(ctx context.Context, profileURL string) (contractx.RawProfile, error) {
	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, url.PathEscape(c.actorID), url.QueryEscape(c.token))

	body, err := json.Marshal(runInput{
		URLs:               []string{profileURL},
		ProxyConfiguration: map[string]any{"useApifyProxy": true},
	})
	if err != nil {
		return contractx.RawProfile{}, fmt.Errorf("marshal actor input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return contractx.RawProfile{}, fmt.Errorf("build actor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contractx.RawProfile{}, fmt.Errorf("%w: %v", contractx.ErrTransientIO, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return contractx.RawProfile{}, fmt.Errorf("%w: read actor response: %v", contractx.ErrTransientIO, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return contractx.RawProfile{}, contractx.ErrProfileNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return contractx.RawProfile{}, fmt.Errorf("%w: actor status=%d", contractx.ErrTransientIO, resp.StatusCode)
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return contractx.RawProfile{}, fmt.Errorf("actor status=%d body=%s", resp.StatusCode, string(raw))
	}

	var items []actorItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return contractx.RawProfile{}, fmt.Errorf("decode actor dataset: %w", err)
	}
	if len(items) == 0 {
		return contractx.RawProfile{}, contractx.ErrProfileNotFound
	}

	return mapItem(items[0]), nil
}

func mapItem(item actorItem) contractx.RawProfile {
	name := strings.TrimSpace(item.FullName)
	if name == "" {
		name = strings.TrimSpace(item.ProfileName)
	}

	profile := contractx.RawProfile{
		Name:     name,
		Headline: strings.TrimSpace(item.Headline),
		About:    strings.TrimSpace(item.Summary),
		Skills:   item.Skills,
	}

	for _, exp := range item.Experience {
		profile.Experience = append(profile.Experience, contractx.ExperienceEntry{
			Title:     strings.TrimSpace(exp.Title),
			Company:   strings.TrimSpace(exp.CompanyName),
			DateRange: dateRange(exp.StartsAt.Year, exp.EndsAt.Year),
			Summary:   strings.TrimSpace(exp.Description),
		})
	}
	for _, edu := range item.Education {
		profile.Education = append(profile.Education, contractx.EducationEntry{
			School: strings.TrimSpace(edu.SchoolName),
			Degree: strings.TrimSpace(edu.DegreeName),
			Years:  dateRange(edu.StartsAt.Year, edu.EndsAt.Year),
		})
	}
	return profile
}

func dateRange(start, end int) string {
	startStr := ""
	if start > 0 {
		startStr = fmt.Sprintf("%d", start)
	}
	endStr := "Present"
	if end > 0 {
		endStr = fmt.Sprintf("%d", end)
	}
	if startStr == "" && endStr == "Present" {
		return ""
	}
	return fmt.Sprintf("%s - %s", startStr, endStr)
}
