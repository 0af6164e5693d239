// Package source holds the fetch adapters for the supported job boards and
// the per-source normalizers that map their raw payloads into the unified
// Job model.
package source

import (
	"errors"

	"github.com/pgauin01/hustlebot/internal/model"
)

// Source tags. The set is open: registering a new source means adding a
// fetcher and a normalizer, nothing else changes.
const (
	TagRemoteOK       = "remoteok"
	TagWeWorkRemotely = "weworkremotely"
	TagFreelancer     = "freelancer"
	TagGoogleSearch   = "google_search"
	TagUpwork         = "upwork"
)

// errNoIdentity marks a raw item with no usable id, URL, or title.
var errNoIdentity = errors.New("no usable identity")

// SnippetOnly lists sources whose payloads carry only short snippets. The
// hard filter trusts them unconditionally since there is no full description
// to search.
func SnippetOnly() []string {
	return []string{TagGoogleSearch, TagFreelancer}
}

// Normalizers returns the per-source mapping functions, keyed by source tag.
func Normalizers() map[string]model.NormalizeFunc {
	return map[string]model.NormalizeFunc{
		TagRemoteOK:       normalizeRemoteOK,
		TagWeWorkRemotely: normalizeWeWorkRemotely,
		TagFreelancer:     normalizeFreelancer,
		TagGoogleSearch:   normalizeGoogleSearch,
		TagUpwork:         normalizeUpwork,
	}
}

// identity derives a stable record id: explicit id, then URL, then a
// source|title composite. Empty means the item must be dropped.
func identity(source, id, url, title string) string {
	if id != "" {
		return id
	}
	if url != "" {
		return url
	}
	if title != "" {
		return source + "|" + title
	}
	return ""
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func normalizeRemoteOK(p map[string]any) (model.Job, error) {
	url := str(p["url"])
	id := identity(TagRemoteOK, str(p["id"]), url, str(p["position"]))
	if id == "" {
		return model.Job{}, errNoIdentity
	}

	when, rawDate := parseWhen(p["date"])
	return model.Job{
		ID:          id,
		Source:      TagRemoteOK,
		Title:       fallback(str(p["position"]), "Unknown"),
		Company:     fallback(str(p["company"]), "Unknown"),
		Description: stripHTML(str(p["description"])),
		URL:         url,
		BudgetMin:   num(p["salary_min"]),
		BudgetMax:   num(p["salary_max"]),
		Currency:    "USD",
		Skills:      strList(p["tags"]),
		Location:    fallback(str(p["location"]), "Worldwide"),
		IsRemote:    true,
		PostedAt:    when,
		PostedRaw:   rawDate,
	}, nil
}

func normalizeWeWorkRemotely(p map[string]any) (model.Job, error) {
	link := str(p["link"])
	title := str(p["title"])
	id := identity(TagWeWorkRemotely, str(p["id"]), link, title)
	if id == "" {
		return model.Job{}, errNoIdentity
	}

	when, rawDate := parseWhen(p["published"])
	return model.Job{
		ID:          id,
		Source:      TagWeWorkRemotely,
		Title:       fallback(title, "Unknown"),
		Company:     fallback(str(p["company"]), "Unknown"),
		Description: stripHTML(str(p["description"])),
		URL:         link,
		Currency:    "USD",
		Location:    "Worldwide",
		IsRemote:    true,
		PostedAt:    when,
		PostedRaw:   rawDate,
	}, nil
}

func normalizeFreelancer(p map[string]any) (model.Job, error) {
	url := str(p["url"])
	title := str(p["title"])
	id := identity(TagFreelancer, str(p["id"]), url, title)
	if id == "" {
		return model.Job{}, errNoIdentity
	}

	return model.Job{
		ID:          id,
		Source:      TagFreelancer,
		Title:       fallback(title, "Unknown"),
		Company:     "Unknown",
		Description: stripHTML(str(p["description"])),
		URL:         url,
		BudgetMin:   num(p["budget_min"]),
		BudgetMax:   num(p["budget_max"]),
		Currency:    fallback(str(p["currency"]), "USD"),
		Location:    "Worldwide",
		IsRemote:    true,
	}, nil
}

func normalizeGoogleSearch(p map[string]any) (model.Job, error) {
	link := str(p["link"])
	title := str(p["title"])
	id := identity(TagGoogleSearch, "", link, title)
	if id == "" {
		return model.Job{}, errNoIdentity
	}

	return model.Job{
		ID:          id,
		Source:      TagGoogleSearch,
		Title:       fallback(title, "Unknown"),
		Company:     "Unknown",
		Description: stripHTML(str(p["snippet"])),
		URL:         link,
		Currency:    "USD",
		Location:    "Unknown",
	}, nil
}

func normalizeUpwork(p map[string]any) (model.Job, error) {
	link := str(p["link"])
	title := str(p["title"])
	id := identity(TagUpwork, str(p["id"]), link, title)
	if id == "" {
		return model.Job{}, errNoIdentity
	}

	when, rawDate := parseWhen(p["published"])
	return model.Job{
		ID:          id,
		Source:      TagUpwork,
		Title:       fallback(title, "Unknown"),
		Company:     "Unknown",
		Description: stripHTML(str(p["description"])),
		URL:         link,
		BudgetMin:   num(p["budget_min"]),
		BudgetMax:   num(p["budget_max"]),
		Currency:    "USD",
		Skills:      strList(p["skills"]),
		Location:    fallback(str(p["location"]), "Unknown"),
		IsRemote:    true,
		PostedAt:    when,
		PostedRaw:   rawDate,
	}, nil
}
