package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/pathway-engine/internal/advisor"
	"github.com/terra-clan/pathway-engine/internal/models"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps advisor errors onto HTTP statuses
func respondServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, advisor.ErrInvalidProfile), errors.Is(err, advisor.ErrInvalidProgress):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, advisor.ErrProfileNotFound):
		respondError(w, http.StatusNotFound, "profile_not_found", "profile not found")
	case errors.Is(err, advisor.ErrRoadmapNotFound):
		respondError(w, http.StatusNotFound, "roadmap_not_found", "roadmap not found")
	case errors.Is(err, advisor.ErrMilestoneNotFound):
		respondError(w, http.StatusNotFound, "milestone_not_found", "milestone not found")
	case errors.Is(err, advisor.ErrCourseNotFound):
		respondError(w, http.StatusNotFound, "course_not_found", "course not found")
	case errors.Is(err, advisor.ErrTemplateNotFound):
		respondError(w, http.StatusNotFound, "template_not_found", "roadmap template not found")
	case errors.Is(err, advisor.ErrTemplateNotApplicable):
		respondError(w, http.StatusUnprocessableEntity, "template_not_applicable", err.Error())
	case errors.Is(err, advisor.ErrVersionConflict):
		respondError(w, http.StatusConflict, "version_conflict", "roadmap was modified concurrently, reload and retry")
	default:
		slog.Error("request failed", "action", action, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

// decodeBody decodes an optional JSON body; an empty body leaves dst untouched
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", err.Error())
		return
	}

	report := s.health.Check(r.Context())
	if !report.Healthy() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := json.NewEncoder(w).Encode(apiResponse{
			Success: false,
			Data:    report,
			Error:   &apiError{Code: "not_ready", Message: "one or more dependencies are unhealthy"},
		}); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"catalog": s.service.Catalog().Version,
		"checks":  report.Checks,
	})
}

// Profile handlers

type createProfileRequest struct {
	models.Profile
	RequireSkills    bool `json:"require_skills"`
	RequireInterests bool `json:"require_interests"`
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := s.service.CreateProfile(r.Context(), req.Profile, models.Requirements{
		Skills:    req.RequireSkills,
		Interests: req.RequireInterests,
	})
	if err != nil {
		respondServiceError(w, err, "create profile")
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.service.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "get profile")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleComputeMatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	result, err := s.service.ComputeMatches(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		respondServiceError(w, err, "compute matches")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Roadmap handlers

func (s *Server) handleRoadmapOptions(w http.ResponseWriter, r *http.Request) {
	sel, err := s.service.SelectRoadmaps(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "select roadmaps")
		return
	}
	respondJSON(w, http.StatusOK, sel)
}

func (s *Server) handleAdoptRoadmap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID string `json:"template_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.TemplateID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "template_id is required")
		return
	}

	view, err := s.service.AdoptRoadmap(r.Context(), chi.URLParam(r, "id"), req.TemplateID)
	if err != nil {
		respondServiceError(w, err, "adopt roadmap")
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListRoadmaps(w http.ResponseWriter, r *http.Request) {
	roadmaps, err := s.service.ListRoadmaps(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "list roadmaps")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"roadmaps": roadmaps,
		"total":    len(roadmaps),
	})
}

func (s *Server) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GetRoadmap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "get roadmap")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleSummarizeRoadmap(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.SummarizeRoadmap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "summarize roadmap")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleToggleMilestone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpectedVersion int `json:"expected_version"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	view, err := s.service.ToggleMilestone(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "milestoneId"), req.ExpectedVersion)
	if err != nil {
		respondServiceError(w, err, "toggle milestone")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// Course handlers

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listing, err := s.service.ListCourses(r.Context(), chi.URLParam(r, "id"), advisor.CourseFilter{
		Level:    q.Get("level"),
		Category: q.Get("category"),
	})
	if err != nil {
		respondServiceError(w, err, "list courses")
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	course, err := s.service.Enroll(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "courseId"))
	if err != nil {
		respondServiceError(w, err, "enroll")
		return
	}
	respondJSON(w, http.StatusOK, course)
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Progress *int `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Progress == nil {
		respondError(w, http.StatusBadRequest, "validation_error", "progress is required")
		return
	}

	course, err := s.service.UpdateCourseProgress(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "courseId"), *req.Progress)
	if err != nil {
		respondServiceError(w, err, "update progress")
		return
	}
	respondJSON(w, http.StatusOK, course)
}

func (s *Server) handleLearningStats(w http.ResponseWriter, r *http.Request) {
	overview, err := s.service.LearningStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "compute learning stats")
		return
	}
	respondJSON(w, http.StatusOK, overview)
}
