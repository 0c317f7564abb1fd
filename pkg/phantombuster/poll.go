package phantombuster

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultPollTimeout  = 10 * time.Minute
)

// Outcome classifies one container status check.
type Outcome int

const (
	// OutcomeRunning means the container has not reached a terminal state.
	OutcomeRunning Outcome = iota
	// OutcomeFinished means the container finished with a clean exit.
	OutcomeFinished
	// OutcomePartialFailure means the container finished with a non-zero
	// exit code. Output may still exist; callers should fetch and warn.
	OutcomePartialFailure
	// OutcomeFatal means the container reported an explicit error status.
	OutcomeFatal
	// OutcomeTransient means the status check itself failed and should be
	// retried on the next tick.
	OutcomeTransient
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeFinished:
		return "finished"
	case OutcomePartialFailure:
		return "partial_failure"
	case OutcomeFatal:
		return "fatal"
	case OutcomeTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// PollResult is the terminal state observed by PollContainer.
type PollResult struct {
	Outcome  Outcome
	Status   string
	ExitCode int
}

// PollOption configures polling behavior.
type PollOption func(*pollConfig)

type pollConfig struct {
	interval time.Duration
	timeout  time.Duration
}

func defaultPollConfig() pollConfig {
	return pollConfig{
		interval: defaultPollInterval,
		timeout:  defaultPollTimeout,
	}
}

// WithPollInterval overrides the fixed poll interval.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.interval = d
	}
}

// WithPollTimeout overrides the default timeout (applied only if the parent
// context has no deadline).
func WithPollTimeout(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.timeout = d
	}
}

// classify maps one status check to an Outcome. A failed check is transient:
// the container may still be running, so the loop keeps polling until the
// overall deadline.
func classify(resp *ContainerStatusResponse, err error) (Outcome, *ContainerStatusResponse) {
	if err != nil {
		return OutcomeTransient, nil
	}
	switch resp.Status {
	case "finished", "success":
		if resp.ExitCode != nil && *resp.ExitCode != 0 {
			return OutcomePartialFailure, resp
		}
		return OutcomeFinished, resp
	case "error", "launch error", "lack of credits":
		return OutcomeFatal, resp
	default:
		// queued, starting, running, unknown in-flight states
		return OutcomeRunning, resp
	}
}

// PollContainer polls GetContainerStatus on a fixed interval until the
// container reaches a terminal state or the deadline expires. Transient
// status-check errors do not abort the loop. A fatal status returns an
// error; finished and partial-failure results are returned to the caller,
// which decides whether to fetch output.
func PollContainer(ctx context.Context, client Client, containerID string, opts ...PollOption) (*PollResult, error) {
	cfg := defaultPollConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	for {
		status, err := client.GetContainerStatus(ctx, containerID)
		outcome, resp := classify(status, err)

		switch outcome {
		case OutcomeFinished, OutcomePartialFailure:
			result := &PollResult{Outcome: outcome, Status: resp.Status}
			if resp.ExitCode != nil {
				result.ExitCode = *resp.ExitCode
			}
			return result, nil
		case OutcomeFatal:
			return nil, eris.Errorf("phantombuster: container %s failed with status %q", containerID, resp.Status)
		case OutcomeTransient:
			if ctx.Err() == nil {
				zap.L().Warn("phantombuster: status check failed, will retry",
					zap.String("container_id", containerID),
					zap.Error(err),
				)
			}
		}

		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), fmt.Sprintf("phantombuster: poll container %s timed out", containerID))
		case <-time.After(cfg.interval):
		}
	}
}
