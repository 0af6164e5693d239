package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
)

const wwrFeedURL = "https://weworkremotely.com/categories/remote-programming-jobs.rss"

// wwrItem is one entry of the WeWorkRemotely RSS feed.
type wwrItem struct {
	GUID        string `xml:"guid"`
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Author      string `xml:"author"`
}

type wwrFeed struct {
	Channel struct {
		Items []wwrItem `xml:"item"`
	} `xml:"channel"`
}

// WeWorkRemotelyFetcher pulls the remote-programming RSS feed. The feed is
// category-wide, so the query is not applied here — the hard filter and the
// scorer narrow the results downstream.
type WeWorkRemotelyFetcher struct {
	client *http.Client
}

// NewWeWorkRemotely creates a WeWorkRemotely fetcher.
func NewWeWorkRemotely(client *http.Client) *WeWorkRemotelyFetcher {
	return &WeWorkRemotelyFetcher{client: client}
}

func (f *WeWorkRemotelyFetcher) Source() string { return TagWeWorkRemotely }

func (f *WeWorkRemotelyFetcher) Fetch(ctx context.Context, query string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wwrFeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely fetch: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weworkremotely fetch: %w", httpError(resp))
	}

	var feed wwrFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("weworkremotely fetch: decoding feed: %w", err)
	}

	jobs := make([]map[string]any, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		jobs = append(jobs, map[string]any{
			"id":          item.GUID,
			"title":       item.Title,
			"company":     wwrCompany(item),
			"link":        item.Link,
			"description": item.Description,
			"published":   item.PubDate,
		})
	}
	return jobs, nil
}

// wwrCompany extracts the company name: the author field when present,
// otherwise the "Company: Role" title convention.
func wwrCompany(item wwrItem) string {
	if item.Author != "" {
		return item.Author
	}
	if head, _, ok := strings.Cut(item.Title, ":"); ok && len(head) < 50 {
		return strings.TrimSpace(head)
	}
	return "Unknown"
}
