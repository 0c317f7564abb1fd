package pipeline

import "fmt"

// ValidationError marks malformed or out-of-range request input. No
// external call is made once one is raised.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

// LaunchError marks a rejected launch call, or a launch that produced
// neither inline rows nor a container id.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return "automation launch: " + e.Err.Error()
}

func (e *LaunchError) Unwrap() error { return e.Err }

// RunError marks a container that reached an explicit failure status.
type RunError struct {
	Err error
}

func (e *RunError) Error() string {
	return "automation run: " + e.Err.Error()
}

func (e *RunError) Unwrap() error { return e.Err }

// TimeoutError marks a container that never reached a terminal state
// within the overall poll deadline.
type TimeoutError struct {
	Minutes int
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("automation execution timed out after %d minutes", e.Minutes)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// EmptyResultError marks a run that completed but produced zero usable
// rows. An empty scrape is indistinguishable from a misconfigured agent,
// so it is reported rather than returned as an empty success.
type EmptyResultError struct {
	ContainerID string
}

func (e *EmptyResultError) Error() string {
	if e.ContainerID == "" {
		return "automation produced no results"
	}
	return fmt.Sprintf("automation produced no results (container %s)", e.ContainerID)
}
