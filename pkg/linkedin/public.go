// Package linkedin fetches public profile pages directly and extracts the
// profile fields from the HTML. It is the fallback scrape capability used
// when no Apify token is configured; public pages expose less data than the
// actor, but enough for analysis.
package linkedin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	contractx "github.com/careerninja/learntube/agent/contract"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; LearnTubeAgent/1.0)"
	maxBodyBytes     = 4 << 20
)

type Config struct {
	Timeout   time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	UserAgent string        `envconfig:"USER_AGENT" split_words:"true"`
}

// PublicScraper implements contract.ScrapeClient over plain HTTP + HTML
// extraction.
type PublicScraper struct {
	httpClient *http.Client
	userAgent  string
}

var _ contractx.ScrapeClient = (*PublicScraper)(nil)

func NewPublicScraper(cfg Config) *PublicScraper {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &PublicScraper{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

func (s *PublicScraper) Scrape(ctx context.Context, profileURL string) (contractx.RawProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return contractx.RawProfile{}, fmt.Errorf("%w: %v", contractx.ErrInvalidProfileURL, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return contractx.RawProfile{}, fmt.Errorf("%w: %v", contractx.ErrTransientIO, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return contractx.RawProfile{}, contractx.ErrProfileNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return contractx.RawProfile{}, fmt.Errorf("%w: status=%d", contractx.ErrTransientIO, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return contractx.RawProfile{}, fmt.Errorf("unexpected status=%d fetching profile page", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return contractx.RawProfile{}, fmt.Errorf("parse profile page: %w", err)
	}

	profile := ParseDocument(doc)
	if profile.Name == "" && profile.Headline == "" && len(profile.Experience) == 0 {
		return contractx.RawProfile{}, contractx.ErrProfileNotFound
	}
	return profile, nil
}

// ParseDocument extracts profile fields from a public profile page. Split out
// from Scrape so the extraction is testable against captured HTML.
func ParseDocument(doc *goquery.Document) contractx.RawProfile {
	profile := contractx.RawProfile{
		Name:     cleanText(doc.Find("h1.top-card-layout__title").First().Text()),
		Headline: cleanText(doc.Find("h2.top-card-layout__headline").First().Text()),
		About:    cleanText(doc.Find("section.summary div.core-section-container__content").First().Text()),
	}

	doc.Find("section.experience li.experience-item").Each(func(_ int, sel *goquery.Selection) {
		entry := contractx.ExperienceEntry{
			Title:     cleanText(sel.Find("h3.profile-section-card__title").First().Text()),
			Company:   cleanText(sel.Find("h4.profile-section-card__subtitle").First().Text()),
			DateRange: cleanText(sel.Find("span.date-range").First().Text()),
			Summary:   cleanText(sel.Find("div.experience-item__description").First().Text()),
		}
		if entry.Title != "" {
			profile.Experience = append(profile.Experience, entry)
		}
	})

	doc.Find("section.education li.education__list-item").Each(func(_ int, sel *goquery.Selection) {
		entry := contractx.EducationEntry{
			School: cleanText(sel.Find("h3.profile-section-card__title").First().Text()),
			Degree: cleanText(sel.Find("h4.profile-section-card__subtitle").First().Text()),
			Years:  cleanText(sel.Find("span.date-range").First().Text()),
		}
		if entry.School != "" {
			profile.Education = append(profile.Education, entry)
		}
	})

	doc.Find("section.skills li.skills__item, ul.skills-list li").Each(func(_ int, sel *goquery.Selection) {
		if skill := cleanText(sel.Text()); skill != "" {
			profile.Skills = append(profile.Skills, skill)
		}
	})

	return profile
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
