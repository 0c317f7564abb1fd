// Package pipeline sequences the lead-generation request: launch the
// scraping agent, poll to completion, normalize the rows, enrich each
// lead, and render the CSV.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/growthkit/leadrelay/internal/config"
	"github.com/growthkit/leadrelay/internal/enrich"
	"github.com/growthkit/leadrelay/internal/lead"
	"github.com/growthkit/leadrelay/pkg/hunter"
	"github.com/growthkit/leadrelay/pkg/phantombuster"
)

// Request holds the validated-on-entry job parameters. A zero Count means
// the configured default applies.
type Request struct {
	Industry string
	Location string
	Count    int
}

// Pipeline owns the request-scoped flow. Any failure before rows are
// fetched aborts the whole request; after that point enrichment failures
// cost at most one lead each.
type Pipeline struct {
	cfg      *config.Config
	phantom  phantombuster.Client
	enricher *enrich.Enricher
}

// New wires a Pipeline from its collaborators.
func New(cfg *config.Config, phantom phantombuster.Client, finder hunter.Client) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		phantom:  phantom,
		enricher: enrich.New(finder, time.Duration(cfg.Hunter.DelayMillis)*time.Millisecond),
	}
}

// Run executes the full pipeline and returns the CSV text.
func (p *Pipeline) Run(ctx context.Context, req Request) (string, error) {
	count, err := p.validate(req)
	if err != nil {
		return "", err
	}

	rows, err := p.fetchRows(ctx, req)
	if err != nil {
		return "", err
	}

	leads := lead.Normalize(rows)
	if len(leads) > count {
		leads = leads[:count]
	}

	zap.L().Info("normalized leads",
		zap.Int("raw_rows", len(rows)),
		zap.Int("leads", len(leads)),
	)

	enriched, err := p.enricher.EnrichAll(ctx, leads)
	if err != nil {
		return "", err
	}

	return lead.RenderCSV(enriched), nil
}

// validate applies the count default and bounds. Industry and location are
// passed through to the agent; whether they are required depends on the
// agent's saved configuration, not on this service.
func (p *Pipeline) validate(req Request) (int, error) {
	count := req.Count
	if count == 0 {
		count = p.cfg.Leads.DefaultCount
	}
	if count < 1 || count > p.cfg.Leads.MaxCount {
		return 0, &ValidationError{
			Msg: fmt.Sprintf("count must be between 1 and %d, got %d", p.cfg.Leads.MaxCount, req.Count),
		}
	}
	return count, nil
}

// fetchRows launches the agent and retrieves the raw rows, polling for
// completion when the launch is asynchronous. One launch per request:
// retrying a paid agent run silently would duplicate billable work.
func (p *Pipeline) fetchRows(ctx context.Context, req Request) ([]lead.RawRow, error) {
	agentID := p.cfg.Phantombuster.AgentID

	launch, err := p.phantom.Launch(ctx, agentID, phantombuster.LaunchRequest{
		Argument: launchArgument(req),
	})
	if err != nil {
		return nil, &LaunchError{Err: err}
	}

	// Some agent configurations finish synchronously and return rows in
	// the launch response itself.
	if rows := launch.InlineRows(); len(rows) > 0 {
		zap.L().Info("launch returned inline rows", zap.Int("rows", len(rows)))
		return toRawRows(rows), nil
	}

	if launch.ContainerID == "" {
		return nil, &LaunchError{Err: eris.New("launch produced neither rows nor a container id")}
	}

	zap.L().Info("agent launched",
		zap.String("agent_id", agentID),
		zap.String("container_id", launch.ContainerID),
	)

	result, err := phantombuster.PollContainer(ctx, p.phantom, launch.ContainerID,
		phantombuster.WithPollInterval(time.Duration(p.cfg.Phantombuster.PollIntervalSecs)*time.Second),
		phantombuster.WithPollTimeout(time.Duration(p.cfg.Phantombuster.PollTimeoutSecs)*time.Second),
	)
	if err != nil {
		if eris.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Minutes: p.cfg.Phantombuster.PollTimeoutSecs / 60, Err: err}
		}
		return nil, &RunError{Err: err}
	}

	// A non-zero exit does not by itself mean zero rows; fetch anyway and
	// let the row count decide.
	if result.Outcome == phantombuster.OutcomePartialFailure {
		zap.L().Warn("container finished with non-zero exit, fetching output anyway",
			zap.String("container_id", launch.ContainerID),
			zap.Int("exit_code", result.ExitCode),
		)
	}

	rows, err := p.fetchOutput(ctx, launch.ContainerID, agentID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &EmptyResultError{ContainerID: launch.ContainerID}
	}

	zap.L().Info("fetched result rows",
		zap.String("container_id", launch.ContainerID),
		zap.Int("rows", len(rows)),
	)
	return toRawRows(rows), nil
}

// fetchOutput tries the container result endpoint first and falls back to
// the agent-level output endpoint, which older agent versions populate
// instead.
func (p *Pipeline) fetchOutput(ctx context.Context, containerID, agentID string) ([]map[string]any, error) {
	result, err := p.phantom.FetchResult(ctx, containerID)
	if err == nil {
		if rows, rowsErr := result.Rows(); rowsErr == nil && len(rows) > 0 {
			return rows, nil
		}
	} else {
		zap.L().Warn("container result fetch failed, trying agent output",
			zap.String("container_id", containerID),
			zap.Error(err),
		)
	}

	fallback, err := p.phantom.FetchAgentOutput(ctx, agentID)
	if err != nil {
		return nil, &RunError{Err: eris.Wrap(err, "fetch output")}
	}
	rows, err := fallback.Rows()
	if err != nil {
		return nil, &RunError{Err: eris.Wrap(err, "decode output")}
	}
	return rows, nil
}

// launchArgument folds the request parameters into the agent argument.
// The LinkedIn search agent takes a free-text search string.
func launchArgument(req Request) map[string]any {
	terms := make([]string, 0, 2)
	if req.Industry != "" {
		terms = append(terms, req.Industry)
	}
	if req.Location != "" {
		terms = append(terms, req.Location)
	}
	if len(terms) == 0 {
		return nil
	}
	return map[string]any{
		"search": strings.Join(terms, " "),
	}
}

func toRawRows(rows []map[string]any) []lead.RawRow {
	out := make([]lead.RawRow, len(rows))
	for i, r := range rows {
		out[i] = lead.RawRow(r)
	}
	return out
}
