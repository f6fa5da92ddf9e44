package apify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/careerninja/learntube/agent/contract"
)

const datasetFixture = `[{
	"fullName": "Jane Doe",
	"headline": "Backend Engineer",
	"summary": "I build payment systems.",
	"skills": ["Go", "Postgres"],
	"experience": [{
		"title": "Backend Engineer",
		"companyName": "Acme Corp",
		"description": "Payments platform.",
		"startsAt": {"year": 2021},
		"endsAt": {}
	}],
	"education": [{
		"schoolName": "State University",
		"degreeName": "BSc Computer Science",
		"startsAt": {"year": 2014},
		"endsAt": {"year": 2018}
	}]
}]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(
		Config{BaseURL: server.URL, Token: "secret"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestScrapeMapsDatasetItem(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotInput runInput
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotInput); err != nil {
			t.Errorf("decode input: %v", err)
		}
		fmt.Fprint(w, datasetFixture)
	})

	raw, err := client.Scrape(context.Background(), "https://www.linkedin.com/in/jane")
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if !strings.Contains(gotPath, "simpleapi~linkedin-profile-scraper") {
		t.Fatalf("path = %q, want default actor", gotPath)
	}
	if len(gotInput.URLs) != 1 || gotInput.URLs[0] != "https://www.linkedin.com/in/jane" {
		t.Fatalf("actor input urls = %v", gotInput.URLs)
	}
	if raw.Name != "Jane Doe" || raw.Headline != "Backend Engineer" {
		t.Fatalf("raw = %+v", raw)
	}
	if len(raw.Experience) != 1 || raw.Experience[0].DateRange != "2021 - Present" {
		t.Fatalf("experience = %+v", raw.Experience)
	}
	if len(raw.Education) != 1 || raw.Education[0].Years != "2014 - 2018" {
		t.Fatalf("education = %+v", raw.Education)
	}
}

func TestScrapeEmptyDatasetIsNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	_, err := client.Scrape(context.Background(), "https://www.linkedin.com/in/nobody")
	if !errors.Is(err, contractx.ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestScrapeStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, contractx.ErrProfileNotFound},
		{http.StatusTooManyRequests, contractx.ErrTransientIO},
		{http.StatusBadGateway, contractx.ErrTransientIO},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(fmt.Sprintf("status_%d", tc.status), func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			_, err := client.Scrape(context.Background(), "https://www.linkedin.com/in/jane")
			if !errors.Is(err, tc.want) {
				t.Fatalf("status %d: err = %v, want %v", tc.status, err, tc.want)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	t.Parallel()

	if got := dateRange(2021, 0); got != "2021 - Present" {
		t.Fatalf("dateRange(2021, 0) = %q", got)
	}
	if got := dateRange(2014, 2018); got != "2014 - 2018" {
		t.Fatalf("dateRange(2014, 2018) = %q", got)
	}
	if got := dateRange(0, 0); got != "" {
		t.Fatalf("dateRange(0, 0) = %q", got)
	}
}
