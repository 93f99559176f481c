package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Catalog handlers serve the snapshot currently in use, tagged with its version

func (s *Server) handleCatalogInfo(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Catalog()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"version":      snap.Version,
		"careers":      len(snap.CareerPaths),
		"courses":      len(snap.Courses),
		"roadmaps":     len(snap.Templates),
		"achievements": len(snap.Achievements),
	})
}

func (s *Server) handleListCareers(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Catalog()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"careers": snap.CareerPaths,
		"total":   len(snap.CareerPaths),
		"version": snap.Version,
	})
}

func (s *Server) handleListCatalogCourses(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Catalog()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"courses": snap.Courses,
		"total":   len(snap.Courses),
		"version": snap.Version,
	})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Catalog()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"roadmaps": snap.Templates,
		"total":    len(snap.Templates),
		"version":  snap.Version,
	})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, ok := s.service.Catalog().Template(chi.URLParam(r, "templateId"))
	if !ok {
		respondError(w, http.StatusNotFound, "template_not_found", "roadmap template not found")
		return
	}
	respondJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Catalog()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": snap.Achievements,
		"total":        len(snap.Achievements),
		"version":      snap.Version,
	})
}
