package source

import (
	"encoding/json"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// stripHTML converts an HTML fragment to plain text with collapsed
// whitespace. goquery handles entities and malformed markup; the regex path
// is only a fallback when the parser rejects the input outright.
func stripHTML(content string) string {
	if content == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		plain := htmlTagRegex.ReplaceAllString(html.UnescapeString(content), " ")
		return collapse(plain)
	}
	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// str coerces a raw payload value to a string. Numeric ids arrive as
// float64 after JSON decoding and must not pick up a decimal point.
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// num coerces a raw payload value to float64. Missing or non-numeric values
// become 0 ("undisclosed"), never an error.
func num(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// strList coerces a raw payload value to a string slice, keeping order and
// skipping non-string elements.
func strList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Date layouts seen across the sources, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseWhen parses a posted-at value. Unparsable dates never fail
// normalization: the original string is kept as an opaque fallback.
func parseWhen(v any) (*time.Time, string) {
	raw := str(v)
	if raw == "" {
		return nil, ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, ""
		}
	}
	return nil, raw
}
