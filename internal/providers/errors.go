package providers

import (
	"errors"
	"net/http"
	"strings"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

var statusMarkers = []struct {
	marker string
	status int
}{
	{"429", http.StatusTooManyRequests},
	{"500", http.StatusInternalServerError},
	{"502", http.StatusBadGateway},
	{"503", http.StatusServiceUnavailable},
	{"504", http.StatusGatewayTimeout},
	{"401", http.StatusUnauthorized},
	{"403", http.StatusForbidden},
	{"400", http.StatusBadRequest},
	{"402", http.StatusPaymentRequired},
}

// extractErrorMetadata extracts the HTTP status code and Retry-After value from an
// SDK error. Typed OpenAI errors are used when available; otherwise the message
// is scanned for well-known markers.
func extractErrorMetadata(err error) (int, string) {
	if err == nil {
		return 0, ""
	}

	errStr := err.Error()
	httpStatus := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0:
		httpStatus = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0:
		httpStatus = reqErr.HTTPStatusCode
	default:
		for _, m := range statusMarkers {
			if strings.Contains(errStr, m.marker) {
				httpStatus = m.status
				break
			}
		}
	}

	return httpStatus, extractRetryAfter(errStr)
}

// extractRetryAfter finds "Retry-After: N" or "retry after N" in an error message.
func extractRetryAfter(errStr string) string {
	lower := strings.ToLower(errStr)
	for _, key := range []string{"retry-after", "retry after"} {
		idx := strings.Index(lower, key)
		if idx == -1 {
			continue
		}
		remaining := strings.TrimLeft(errStr[idx+len(key):], ": ")
		if parts := strings.Fields(remaining); len(parts) > 0 {
			return strings.TrimRight(parts[0], ".,;")
		}
	}
	return ""
}
