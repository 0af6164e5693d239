package source

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pgauin01/hustlebot/internal/model"
)

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// httpError builds an HTTPError from a non-OK response, carrying Retry-After
// so the retry decorator can honor it.
func httpError(resp *http.Response) *model.HTTPError {
	return &model.HTTPError{
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}
