package transfer

import (
	"net/url"
	"strings"
)

// redact trims the query string from raw so BioMart XML queries and any
// embedded credentials stay out of logs and errors.
func redact(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		if cut := strings.IndexByte(raw, '?'); cut >= 0 {
			return raw[:cut]
		}
		return raw
	}
	parsed.User = nil
	if parsed.RawQuery != "" {
		parsed.RawQuery = ""
		parsed.ForceQuery = false
		return parsed.String() + "?..."
	}
	return parsed.String()
}
