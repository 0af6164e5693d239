package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const freelancerBaseURL = "https://www.freelancer.com/api/projects/0.1/projects/active"

// freelancerResponse is the relevant slice of the Freelancer projects API.
type freelancerResponse struct {
	Result struct {
		Projects []struct {
			ID                 any    `json:"id"`
			Title              string `json:"title"`
			PreviewDescription string `json:"preview_description"`
			SeoURL             string `json:"seo_url"`
			Budget             struct {
				Minimum float64 `json:"minimum"`
				Maximum float64 `json:"maximum"`
			} `json:"budget"`
			Currency struct {
				Code string `json:"code"`
			} `json:"currency"`
		} `json:"projects"`
	} `json:"result"`
}

// FreelancerFetcher pulls active projects from the Freelancer.com API.
// Descriptions are preview snippets only, so the source is snippet-trusted.
type FreelancerFetcher struct {
	client *http.Client
}

// NewFreelancer creates a Freelancer fetcher.
func NewFreelancer(client *http.Client) *FreelancerFetcher {
	return &FreelancerFetcher{client: client}
}

func (f *FreelancerFetcher) Source() string { return TagFreelancer }

func (f *FreelancerFetcher) Fetch(ctx context.Context, query string) ([]map[string]any, error) {
	params := url.Values{
		"query":       {query},
		"limit":       {"20"},
		"sort_field":  {"time_updated"},
		"job_details": {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, freelancerBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("freelancer fetch: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("freelancer fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("freelancer fetch: %w", httpError(resp))
	}

	var data freelancerResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("freelancer fetch: decoding response: %w", err)
	}

	jobs := make([]map[string]any, 0, len(data.Result.Projects))
	for _, p := range data.Result.Projects {
		jobs = append(jobs, map[string]any{
			"id":          str(p.ID),
			"title":       p.Title,
			"description": p.PreviewDescription,
			"url":         "https://www.freelancer.com/projects/" + p.SeoURL,
			"budget_min":  p.Budget.Minimum,
			"budget_max":  p.Budget.Maximum,
			"currency":    p.Currency.Code,
		})
	}
	return jobs, nil
}
