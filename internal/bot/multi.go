package bot

import (
	"net/url"
	"strings"
)

// ParseMultiURL extracts "Name#Tag" entries from an op.gg multi-search link,
// e.g. https://op.gg/lol/multisearch/na?summoners=Ann%23NA1%2CBob%23NA1.
// Duplicates are removed; entries without a '#' are dropped.
func ParseMultiURL(raw string) []string {
	_, query, ok := strings.Cut(raw, "summoners=")
	if !ok {
		return nil
	}
	if amp := strings.IndexByte(query, '&'); amp >= 0 {
		query = query[:amp]
	}
	decoded, err := url.QueryUnescape(query)
	if err != nil {
		decoded = query
	}

	seen := map[string]bool{}
	var out []string
	for _, part := range strings.Split(decoded, ",") {
		part = strings.TrimSpace(part)
		if part == "" || !strings.Contains(part, "#") {
			continue
		}
		key := strings.ToLower(part)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, part)
	}
	return out
}
