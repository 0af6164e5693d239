package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const remoteOKBaseURL = "https://remoteok.com/api"

// RemoteOK rejects requests without a browser User-Agent.
const remoteOKUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// RemoteOKFetcher pulls postings from the RemoteOK public API. The query is
// passed as a tag filter ("python", "react", ...).
type RemoteOKFetcher struct {
	client *http.Client
}

// NewRemoteOK creates a RemoteOK fetcher.
func NewRemoteOK(client *http.Client) *RemoteOKFetcher {
	return &RemoteOKFetcher{client: client}
}

func (f *RemoteOKFetcher) Source() string { return TagRemoteOK }

// Fetch retrieves raw postings. The first element of the RemoteOK response is
// a legal notice, not a job; anything without a "position" field is skipped.
func (f *RemoteOKFetcher) Fetch(ctx context.Context, query string) ([]map[string]any, error) {
	endpoint := remoteOKBaseURL
	if query != "" {
		endpoint += "?" + url.Values{"tag": {query}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}
	req.Header.Set("User-Agent", remoteOKUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remoteok fetch: %w", httpError(resp))
	}

	var payload []any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("remoteok fetch: decoding response: %w", err)
	}

	var jobs []map[string]any
	for _, item := range payload {
		m, ok := item.(map[string]any)
		if !ok || str(m["position"]) == "" {
			continue
		}
		if query != "" && !hasTag(m, query) {
			continue
		}
		jobs = append(jobs, m)
	}
	return jobs, nil
}

// hasTag reports whether the posting carries the query as a tag,
// case-insensitively. RemoteOK's tag param is advisory only.
func hasTag(m map[string]any, query string) bool {
	for _, tag := range strList(m["tags"]) {
		if strings.EqualFold(tag, query) {
			return true
		}
	}
	return false
}
