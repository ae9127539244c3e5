package cache

import (
	"fmt"
	"net/url"
	"strings"
)

// GenerateCacheKey normalises a request URL into a canonical cache key.
// Equivalent URLs whose query parameters differ only in ordering or encoding
// collapse to the same key. Malformed input is an error for the caller rather
// than being silently absorbed, since a bad key would poison the cache.
func GenerateCacheKey(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("cache: empty url")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("cache: invalid url %q: %w", rawURL, err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("cache: url %q has no host", rawURL)
	}

	query, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return "", fmt.Errorf("cache: invalid query in %q: %w", rawURL, err)
	}

	key := strings.ToLower(parsed.Host) + parsed.EscapedPath()
	// Encode sorts parameters by key, which is the normalisation step.
	if encoded := query.Encode(); encoded != "" {
		key += "?" + encoded
	}

	return key, nil
}

// ActionKey derives the cache key for a provider API action. The action name
// is embedded as a query parameter so TTL resolution can inspect it.
func ActionKey(baseURL, action string, params url.Values) (string, error) {
	merged := url.Values{}
	for name, values := range params {
		for _, value := range values {
			merged.Add(name, value)
		}
	}
	merged.Set("action", action)

	return GenerateCacheKey(strings.TrimRight(baseURL, "/") + "/player_api.php?" + merged.Encode())
}
