package lead

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Fallback key order per canonical field. Lookups stop at the first
// non-empty match, which tolerates field renames across agent
// configuration versions without pinning a single row schema.
var (
	fullNameKeys = []string{"fullName", "name"}
	titleKeys    = []string{"occupation", "jobTitle", "title"}
	companyKeys  = []string{"companyName", "company"}
	websiteKeys  = []string{"companyWebsite", "website"}
	linkedinKeys = []string{"profileUrl", "linkedinUrl", "linkedInUrl", "linkedinProfileUrl"}
)

// Normalize maps raw agent rows to canonical leads. Rows with no derivable
// name are dropped and logged; they cannot be enriched or meaningfully
// exported.
func Normalize(rows []RawRow) []Lead {
	leads := make([]Lead, 0, len(rows))
	dropped := 0
	for i, row := range rows {
		l, ok := normalizeRow(row)
		if !ok {
			dropped++
			zap.L().Debug("dropping row with no derivable name", zap.Int("row", i))
			continue
		}
		leads = append(leads, l)
	}
	if dropped > 0 {
		zap.L().Warn("dropped rows during normalization",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(leads)),
		)
	}
	return leads
}

func normalizeRow(row RawRow) (Lead, bool) {
	name := firstNonEmpty(row, fullNameKeys...)
	if name == "" {
		first := firstNonEmpty(row, "firstName")
		last := firstNonEmpty(row, "lastName")
		name = strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	}
	if name == "" {
		return Lead{}, false
	}

	return Lead{
		Name:        name,
		Title:       firstNonEmpty(row, titleKeys...),
		Company:     firstNonEmpty(row, companyKeys...),
		Website:     firstNonEmpty(row, websiteKeys...),
		LinkedInURL: firstNonEmpty(row, linkedinKeys...),
	}, true
}

// firstNonEmpty returns the first non-empty value among the given keys.
func firstNonEmpty(row RawRow, keys ...string) string {
	for _, key := range keys {
		if s := stringValue(row[key]); s != "" {
			return s
		}
	}
	return ""
}

// stringValue coerces a decoded JSON value to a trimmed string. Objects and
// arrays are never usable as field values.
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64, bool, int, int64:
		return strings.TrimSpace(fmt.Sprint(val))
	default:
		return ""
	}
}
