package lead

import (
	"net/url"
	"strings"
)

// Domain extracts the registrable hostname from a website value scraped
// off a profile. Inputs frequently lack a scheme, so one is prepended
// before parsing. Anything unparsable yields "" rather than an error:
// a missing domain just means the lead cannot be enriched.
func Domain(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}

	if !strings.Contains(website, "://") {
		website = "https://" + website
	}

	u, err := url.Parse(website)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" || !strings.Contains(host, ".") {
		return ""
	}
	return host
}
