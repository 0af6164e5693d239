package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const upworkGraphQLURL = "https://api.upwork.com/graphql"

const upworkSearchQuery = `
query publicMarketplaceJobPostingsSearch($marketPlaceJobFilter: PublicMarketplaceJobPostingsSearchFilter!) {
  publicMarketplaceJobPostingsSearch(marketPlaceJobFilter: $marketPlaceJobFilter) {
    jobs {
      title
      description
      ciphertext
      createdDateTime
      hourlyBudgetMin
      hourlyBudgetMax
      skills {
        name
        prettyName
      }
    }
  }
}`

type upworkResponse struct {
	Data struct {
		Search struct {
			Jobs []struct {
				Title           string  `json:"title"`
				Description     string  `json:"description"`
				Ciphertext      string  `json:"ciphertext"`
				CreatedDateTime string  `json:"createdDateTime"`
				HourlyBudgetMin float64 `json:"hourlyBudgetMin"`
				HourlyBudgetMax float64 `json:"hourlyBudgetMax"`
				Skills          []struct {
					Name       string `json:"name"`
					PrettyName string `json:"prettyName"`
				} `json:"skills"`
			} `json:"jobs"`
		} `json:"publicMarketplaceJobPostingsSearch"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// UpworkFetcher searches the public Upwork marketplace via GraphQL. A
// pre-obtained bearer token is required; without one the unit degrades to an
// empty contribution.
type UpworkFetcher struct {
	accessToken string
	tenantID    string
	client      *http.Client
}

// NewUpwork creates an Upwork fetcher. tenantID is optional.
func NewUpwork(accessToken, tenantID string, client *http.Client) *UpworkFetcher {
	return &UpworkFetcher{accessToken: accessToken, tenantID: tenantID, client: client}
}

func (f *UpworkFetcher) Source() string { return TagUpwork }

func (f *UpworkFetcher) Fetch(ctx context.Context, query string) ([]map[string]any, error) {
	if f.accessToken == "" {
		return nil, fmt.Errorf("upwork fetch: access token not configured")
	}

	reqBody := map[string]any{
		"query": upworkSearchQuery,
		"variables": map[string]any{
			"marketPlaceJobFilter": map[string]any{
				"searchExpression_eq": query,
				"pagination":          map[string]any{"offset": 0, "count": 25},
			},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("upwork fetch: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, upworkGraphQLURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("upwork fetch: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.accessToken)
	if f.tenantID != "" {
		req.Header.Set("X-Upwork-API-TenantId", f.tenantID)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upwork fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upwork fetch: %w", httpError(resp))
	}

	var data upworkResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("upwork fetch: decoding response: %w", err)
	}
	if len(data.Errors) > 0 {
		return nil, fmt.Errorf("upwork fetch: graphql error: %s", data.Errors[0].Message)
	}

	jobs := make([]map[string]any, 0, len(data.Data.Search.Jobs))
	for _, j := range data.Data.Search.Jobs {
		skills := make([]string, 0, len(j.Skills))
		for _, s := range j.Skills {
			if name := fallback(s.PrettyName, s.Name); name != "" {
				skills = append(skills, name)
			}
		}
		jobs = append(jobs, map[string]any{
			"id":          j.Ciphertext,
			"title":       j.Title,
			"description": j.Description,
			"link":        upworkJobURL(j.Ciphertext),
			"published":   j.CreatedDateTime,
			"budget_min":  j.HourlyBudgetMin,
			"budget_max":  j.HourlyBudgetMax,
			"skills":      skills,
		})
	}
	return jobs, nil
}

func upworkJobURL(ciphertext string) string {
	if ciphertext == "" {
		return ""
	}
	if !strings.HasPrefix(ciphertext, "~") {
		ciphertext = "~" + ciphertext
	}
	return "https://www.upwork.com/jobs/" + ciphertext
}
