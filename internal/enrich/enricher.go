// Package enrich looks up email addresses for normalized leads through the
// Hunter email-finder, one lead at a time.
package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/growthkit/leadrelay/internal/lead"
	"github.com/growthkit/leadrelay/pkg/hunter"
)

// Enricher runs best-effort email lookups. Calls are strictly sequential
// with a minimum inter-call delay; the cap on outbound call rate is a
// deliberate policy toward Hunter, not an incidental one, so leads are
// never enriched in parallel.
type Enricher struct {
	client  hunter.Client
	limiter *rate.Limiter
}

// New creates an Enricher with the given minimum delay between calls.
func New(client hunter.Client, delay time.Duration) *Enricher {
	if delay <= 0 {
		delay = time.Second
	}
	return &Enricher{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// EnrichAll decorates each lead with an email match where one exists. A
// miss, an upstream error, or a lead that cannot be queried all produce an
// empty email for that lead only; the batch always completes. The only
// error returned is context cancellation.
func (e *Enricher) EnrichAll(ctx context.Context, leads []lead.Lead) ([]lead.EnrichedLead, error) {
	enriched := make([]lead.EnrichedLead, 0, len(leads))
	matched := 0

	for _, l := range leads {
		result, called, err := e.enrichOne(ctx, l)
		if err != nil {
			return nil, err
		}
		if called && result.Email != "" {
			matched++
		}
		enriched = append(enriched, result)
	}

	zap.L().Info("enrichment complete",
		zap.Int("leads", len(leads)),
		zap.Int("matched", matched),
	)
	return enriched, nil
}

// enrichOne performs at most one email-finder call for the lead. The
// returned error is non-nil only when the context is done.
func (e *Enricher) enrichOne(ctx context.Context, l lead.Lead) (lead.EnrichedLead, bool, error) {
	result := lead.EnrichedLead{Lead: l}

	first, last, ok := splitName(l.Name)
	if !ok {
		zap.L().Debug("skipping enrichment: no last name", zap.String("name", l.Name))
		return result, false, nil
	}

	domain := lead.Domain(l.Website)
	if domain == "" {
		zap.L().Debug("skipping enrichment: no domain", zap.String("name", l.Name))
		return result, false, nil
	}

	// Hunter's rate limit is the binding constraint here; wait before
	// every call.
	if err := e.limiter.Wait(ctx); err != nil {
		return result, false, eris.Wrap(err, "enrich: rate limiter wait")
	}

	found, err := e.client.FindEmail(ctx, hunter.FindRequest{
		Domain:    domain,
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		if ctx.Err() != nil {
			return result, true, eris.Wrap(ctx.Err(), "enrich: lookup canceled")
		}
		if !eris.Is(err, hunter.ErrNoMatch) {
			zap.L().Warn("email lookup failed",
				zap.String("name", l.Name),
				zap.String("domain", domain),
				zap.Error(err),
			)
		}
		return result, true, nil
	}

	result.Email = found.Email
	score := found.Score
	result.Confidence = &score
	return result, true, nil
}

// splitName divides a full name into a first token and the remaining
// tokens joined as the last name. Hunter requires both parts, so a
// single-token name is not queryable.
func splitName(name string) (first, last string, ok bool) {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], strings.Join(parts[1:], " "), true
}
