package lead

import (
	"strconv"
	"strings"
)

// csvColumns defines the ordered CSV output columns.
var csvColumns = []string{
	"Name",
	"Title",
	"Company",
	"Website",
	"Email",
	"Confidence",
	"LinkedIn",
}

// RenderCSV serializes enriched leads with a fixed header. Every field is
// quoted unconditionally, with inner quotes doubled; scraped names and
// titles routinely contain commas and quote characters, and encoding/csv's
// quote-when-needed output complicates downstream diffing. The header line
// is present even for an empty lead list.
func RenderCSV(leads []EnrichedLead) string {
	lines := make([]string, 0, len(leads)+1)
	lines = append(lines, renderRow(csvColumns))

	for _, l := range leads {
		lines = append(lines, renderRow(buildRow(l)))
	}

	return strings.Join(lines, "\n")
}

// buildRow maps an EnrichedLead to its column values.
func buildRow(l EnrichedLead) []string {
	confidence := ""
	if l.Confidence != nil {
		confidence = strconv.Itoa(*l.Confidence)
	}

	return []string{
		l.Name,
		l.Title,
		l.Company,
		l.Website,
		l.Email,
		confidence,
		l.LinkedInURL,
	}
}

func renderRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
