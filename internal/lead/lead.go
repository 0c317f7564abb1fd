// Package lead holds the canonical lead model plus the normalization,
// domain-extraction, and CSV-rendering steps that surround it.
package lead

// RawRow is one profile row as returned by the scraping agent. Field names
// vary across agent configurations, so it stays an untyped map until
// normalization.
type RawRow map[string]any

// Lead is the schema-stable representation of one scraped profile.
// Name is always non-empty; rows without a derivable name are dropped
// during normalization.
type Lead struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Website     string `json:"website"`
	LinkedInURL string `json:"linkedinUrl"`
}

// EnrichedLead is a Lead decorated with the email-finder result. Confidence
// is nil when no match was found, so it renders as an empty CSV field
// rather than a zero.
type EnrichedLead struct {
	Lead
	Email      string `json:"email"`
	Confidence *int   `json:"confidence,omitempty"`
}
