package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/pathway-engine/internal/advisor"
	"github.com/terra-clan/pathway-engine/internal/config"
	"github.com/terra-clan/pathway-engine/internal/health"
	"github.com/terra-clan/pathway-engine/internal/metrics"
	"github.com/terra-clan/pathway-engine/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	service        advisor.Service
	health         *health.Registry
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	service advisor.Service,
	checks *health.Registry,
	repo storage.Repository,
) *Server {
	if checks == nil {
		checks = health.NewRegistry(0)
	}
	s := &Server{
		config:         cfg,
		service:        service,
		health:         checks,
		authMiddleware: NewAuthMiddleware(repo),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public endpoints
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	auth := s.authMiddleware
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/profiles", func(r chi.Router) {
			r.With(auth.RequirePermission("profiles:write")).Post("/", s.handleCreateProfile)

			r.Route("/{id}", func(r chi.Router) {
				r.With(auth.RequirePermission("profiles:read")).Get("/", s.handleGetProfile)
				r.With(auth.RequirePermission("profiles:read")).Get("/matches", s.handleComputeMatches)

				r.With(auth.RequirePermission("roadmaps:read")).Get("/roadmaps", s.handleListRoadmaps)
				r.With(auth.RequirePermission("roadmaps:read")).Get("/roadmaps/options", s.handleRoadmapOptions)
				r.With(auth.RequirePermission("roadmaps:write")).Post("/roadmaps", s.handleAdoptRoadmap)

				r.With(auth.RequirePermission("courses:read")).Get("/courses", s.handleListCourses)
				r.With(auth.RequirePermission("courses:write")).Post("/courses/{courseId}/enroll", s.handleEnroll)
				r.With(auth.RequirePermission("courses:write")).Put("/courses/{courseId}/progress", s.handleUpdateProgress)
				r.With(auth.RequirePermission("courses:read")).Get("/learning-stats", s.handleLearningStats)
			})
		})

		r.Route("/roadmaps/{id}", func(r chi.Router) {
			r.With(auth.RequirePermission("roadmaps:read")).Get("/", s.handleGetRoadmap)
			r.With(auth.RequirePermission("roadmaps:read")).Get("/summary", s.handleSummarizeRoadmap)
			r.With(auth.RequirePermission("roadmaps:write")).Post("/milestones/{milestoneId}/toggle", s.handleToggleMilestone)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Use(auth.RequirePermission("catalog:read"))
			r.Get("/", s.handleCatalogInfo)
			r.Get("/careers", s.handleListCareers)
			r.Get("/courses", s.handleListCatalogCourses)
			r.Get("/roadmaps", s.handleListTemplates)
			r.Get("/roadmaps/{templateId}", s.handleGetTemplate)
			r.Get("/achievements", s.handleListAchievements)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog and records latency by route pattern
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			elapsed := time.Since(start)
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			metrics.ObserveRequest(r.Method, route, ww.Status(), elapsed)

			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", elapsed.Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
