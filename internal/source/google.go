package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const googleSearchBaseURL = "https://www.googleapis.com/customsearch/v1"

type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GoogleSearchFetcher runs a site-restricted Programmable Search query per
// configured job board. Results carry snippets only, so the source is
// snippet-trusted by the hard filter.
type GoogleSearchFetcher struct {
	apiKey string
	cx     string
	gl     string
	sites  []string
	client *http.Client
}

// NewGoogleSearch creates a Custom Search fetcher. cx may be the raw engine
// id or a full Programmable Search URL; it is normalized either way.
func NewGoogleSearch(apiKey, cx, gl string, sites []string, client *http.Client) *GoogleSearchFetcher {
	if gl == "" {
		gl = "us"
	}
	return &GoogleSearchFetcher{
		apiKey: apiKey,
		cx:     normalizeCX(cx),
		gl:     gl,
		sites:  sites,
		client: client,
	}
}

func (f *GoogleSearchFetcher) Source() string { return TagGoogleSearch }

// Fetch queries each configured site. A single site failing does not drop
// the others; an error is returned only when nothing was retrieved at all.
func (f *GoogleSearchFetcher) Fetch(ctx context.Context, query string) ([]map[string]any, error) {
	if f.apiKey == "" || f.cx == "" {
		return nil, fmt.Errorf("google search: api key or cx not configured")
	}

	var (
		jobs    []map[string]any
		lastErr error
	)
	for _, site := range f.sites {
		items, err := f.searchSite(ctx, query, site)
		if err != nil {
			lastErr = err
			continue
		}
		jobs = append(jobs, items...)
	}

	if len(jobs) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return jobs, nil
}

func (f *GoogleSearchFetcher) searchSite(ctx context.Context, query, site string) ([]map[string]any, error) {
	params := url.Values{
		"key": {f.apiKey},
		"cx":  {f.cx},
		"q":   {fmt.Sprintf("site:%s %q", site, query)},
		"gl":  {f.gl},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleSearchBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google search %s: %w", site, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google search %s: %w", site, err)
	}
	defer resp.Body.Close()

	var data googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("google search %s: decoding response (HTTP %d): %w", site, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || data.Error != nil {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if data.Error != nil {
			msg = data.Error.Message
		}
		return nil, fmt.Errorf("google search %s: %s", site, msg)
	}

	items := make([]map[string]any, 0, len(data.Items))
	for _, it := range data.Items {
		items = append(items, map[string]any{
			"title":   it.Title,
			"link":    it.Link,
			"snippet": it.Snippet,
		})
	}
	return items, nil
}

// normalizeCX accepts a plain engine id, a "cx=..." query fragment, or a
// full Programmable Search URL and returns only the engine id.
func normalizeCX(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.Contains(value, "://") {
		if u, err := url.Parse(value); err == nil {
			if cx := strings.TrimSpace(u.Query().Get("cx")); cx != "" {
				return cx
			}
		}
		return value
	}
	if strings.Contains(value, "cx=") {
		if vals, err := url.ParseQuery(value); err == nil {
			if cx := strings.TrimSpace(vals.Get("cx")); cx != "" {
				return cx
			}
		}
	}
	return value
}
