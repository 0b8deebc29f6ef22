package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"invisinsights/internal/model"
	"invisinsights/internal/service"
)

// AnalysisHandler handles session collection and analysis endpoints
type AnalysisHandler struct {
	analysisSvc *service.AnalysisService
	logger      *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisSvc *service.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisSvc: analysisSvc,
		logger:      logger,
	}
}

// sessionEnvelope holds the fields the bridge reads from an otherwise opaque session
type sessionEnvelope struct {
	SessionID          json.RawMessage `json:"session_id"`
	ProjectID          json.RawMessage `json:"project_id"`
	ProjectIDCamel     json.RawMessage `json:"projectId"`
	Project            json.RawMessage `json:"project"`
	SurveyMonkeyConfig json.RawMessage `json:"surveymonkey_config"`
}

// parseSession reads the body and builds the analysis request. It writes the
// error response and returns nil when the body is unusable.
func (h *AnalysisHandler) parseSession(w http.ResponseWriter, r *http.Request) *service.AnalysisRequest {
	body, err := readBody(w, r)
	if err == errBodyTooLarge {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return nil
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil
	}

	var env sessionEnvelope
	if json.Unmarshal(body, &env) != nil {
		writeError(w, http.StatusBadRequest, "missing session_id")
		return nil
	}
	sessionID := scalarID(env.SessionID)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session_id")
		return nil
	}

	projectID := scalarID(env.ProjectID)
	if projectID == "" {
		projectID = scalarID(env.ProjectIDCamel)
	}
	if projectID == "" {
		projectID = scalarID(env.Project)
	}

	req := &service.AnalysisRequest{
		ProjectID: projectID,
		SessionID: sessionID,
		Session:   json.RawMessage(body),
	}
	if len(env.SurveyMonkeyConfig) > 0 && string(env.SurveyMonkeyConfig) != "null" {
		var cfg model.SurveyConfig
		if err := json.Unmarshal(env.SurveyMonkeyConfig, &cfg); err != nil {
			// malformed configs fail validation downstream
			cfg = model.SurveyConfig{}
		}
		req.InlineConfig = &cfg
	}
	return req
}

// scalarID accepts a non-empty string or a non-zero number
func scalarID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		if f, err := n.Float64(); err == nil && f != 0 {
			return n.String()
		}
	}
	return ""
}

// Collect handles POST /collect
func (h *AnalysisHandler) Collect(w http.ResponseWriter, r *http.Request) {
	req := h.parseSession(w, r)
	if req == nil {
		return
	}
	req.InlineConfig = nil

	status := h.analysisSvc.Collect(r.Context(), req)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":            true,
		"survey_status": status,
	})
}

// AnalyzeResponse is the body of a POST /analyze reply
type AnalyzeResponse struct {
	Analysis     map[string]interface{} `json:"analysis,omitempty"`
	SurveyStatus model.SurveyStatus     `json:"survey_status"`
}

// Analyze handles POST /analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req := h.parseSession(w, r)
	if req == nil {
		return
	}

	result, err := h.analysisSvc.Analyze(r.Context(), req)
	if err != nil {
		h.logger.Error("analysis failed",
			zap.String("session_id", req.SessionID),
			zap.String("project_id", req.ProjectID),
			zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "analysis_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Analysis:     result.Analysis,
		SurveyStatus: result.Status,
	})
}

// RecentSessions handles GET /sessions/recent
func (h *AnalysisHandler) RecentSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	sessions, err := h.analysisSvc.RecentSessions(r.Context(), limit)
	if err != nil {
		h.logger.Error("recent sessions lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "sessions_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}
