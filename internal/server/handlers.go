package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/growthkit/leadrelay/internal/pipeline"
)

// generateRequest is the body for POST /generate. count and lead_count are
// synonyms carried over from earlier frontend versions; count wins when
// both are set.
type generateRequest struct {
	Industry  string `json:"industry"`
	Location  string `json:"location"`
	Count     int    `json:"count"`
	LeadCount int    `json:"lead_count"`
}

// errorBody is the JSON error envelope for all non-2xx responses.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "leadrelay",
		"version": Version,
		"status":  "ok",
	})
}

// handleHealth reports which required secrets are configured. It does not
// probe the upstream APIs; an unset key is the common deployment mistake
// this check exists to catch.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                  "ok",
		"phantombuster_key_set":   s.cfg.Phantombuster.Key != "",
		"phantombuster_agent_set": s.cfg.Phantombuster.AgentID != "",
		"hunter_key_set":          s.cfg.Hunter.Key != "",
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	count := req.Count
	if count == 0 {
		count = req.LeadCount
	}

	csv, err := s.pipe.Run(r.Context(), pipeline.Request{
		Industry: req.Industry,
		Location: req.Location,
		Count:    count,
	})
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

// writePipelineError maps the pipeline error taxonomy to HTTP statuses.
// The message always names which stage failed so an operator can tell a
// bad request from a misbehaving upstream.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	var (
		validationErr *pipeline.ValidationError
		launchErr     *pipeline.LaunchError
		runErr        *pipeline.RunError
		timeoutErr    *pipeline.TimeoutError
		emptyErr      *pipeline.EmptyResultError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "invalid request",
			Details: validationErr.Msg,
		})
	case errors.As(err, &launchErr):
		zap.L().Error("automation launch failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error:   "automation launch failed",
			Details: err.Error(),
		})
	case errors.As(err, &timeoutErr):
		zap.L().Error("automation timed out", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "automation timed out",
			Details: timeoutErr.Error(),
		})
	case errors.As(err, &emptyErr):
		zap.L().Error("automation produced no results", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error:   "automation produced no results",
			Details: emptyErr.Error(),
		})
	case errors.As(err, &runErr):
		zap.L().Error("automation run failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error:   "automation run failed",
			Details: err.Error(),
		})
	default:
		zap.L().Error("pipeline failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "internal error",
			Details: err.Error(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
