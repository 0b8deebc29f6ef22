package handler

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"invisinsights/internal/service"
)

// ProjectHandler handles SurveyMonkey connection endpoints
type ProjectHandler struct {
	connectSvc *service.ConnectService
	logger     *zap.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(connectSvc *service.ConnectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		connectSvc: connectSvc,
		logger:     logger,
	}
}

// Status handles GET /project-status
func (h *ProjectHandler) Status(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "missing project_id")
		return
	}

	status, err := h.connectSvc.Status(r.Context(), projectID)
	if err != nil {
		h.logger.Error("project status lookup failed", zap.String("project_id", projectID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "status_failed")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ListSurveysRequest is the request body for listing surveys
type ListSurveysRequest struct {
	AccessToken string `json:"access_token"`
}

// ListSurveys handles POST /surveymonkey/surveys
func (h *ProjectHandler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	var req ListSurveysRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		writeError(w, http.StatusBadRequest, "missing access_token")
		return
	}

	surveys, err := h.connectSvc.ListSurveys(r.Context(), req.AccessToken)
	if err != nil {
		h.logger.Warn("survey list failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "survey_list_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"surveys": surveys})
}

// ConnectRequest is the request body for POST /connect-surveymonkey
type ConnectRequest struct {
	ProjectID   string `json:"project_id"`
	AccessToken string `json:"access_token"`
	SurveyID    string `json:"survey_id"`
}

// Connect handles POST /connect-surveymonkey
func (h *ProjectHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProjectID == "" || req.AccessToken == "" || req.SurveyID == "" {
		writeError(w, http.StatusBadRequest, "missing project_id, access_token, or survey_id")
		return
	}

	_, err := h.connectSvc.Connect(r.Context(), req.ProjectID, req.AccessToken, req.SurveyID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true, "surveymonkey_connected": true})
	case errors.Is(err, service.ErrSurveyNotFound), errors.Is(err, service.ErrNoCollectors):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMappingFailed):
		writeError(w, http.StatusBadRequest, service.ErrMappingFailed.Error())
	default:
		h.logger.Error("connect failed",
			zap.String("project_id", req.ProjectID),
			zap.String("survey_id", req.SurveyID),
			zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "connect_failed", err)
	}
}

// SetupPage handles GET /connect-surveymonkey
func (h *ProjectHandler) SetupPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := setupPage.Execute(w, struct{ ProjectID string }{r.URL.Query().Get("project_id")})
	if err != nil {
		h.logger.Error("setup page render failed", zap.Error(err))
	}
}
