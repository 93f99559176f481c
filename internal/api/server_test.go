package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/terra-clan/pathway-engine/internal/advisor"
	"github.com/terra-clan/pathway-engine/internal/cache"
	"github.com/terra-clan/pathway-engine/internal/catalog"
	"github.com/terra-clan/pathway-engine/internal/config"
	"github.com/terra-clan/pathway-engine/internal/health"
	"github.com/terra-clan/pathway-engine/internal/matching"
	"github.com/terra-clan/pathway-engine/internal/models"
	"github.com/terra-clan/pathway-engine/internal/storage"
)

const (
	adminKey    = "pw_test_admin_key_0001"
	readOnlyKey = "pw_test_reader_key_0002"
	disabledKey = "pw_test_disabled_key_03"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	checks  *health.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	loader := catalog.NewLoader()
	if err := loader.LoadFromDir("../../catalog"); err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	repo := storage.NewMemoryRepository()
	repo.AddClient(models.ApiClient{Name: "admin", ApiKey: adminKey, IsActive: true, Permissions: []string{"*"}})
	repo.AddClient(models.ApiClient{Name: "reader", ApiKey: readOnlyKey, IsActive: true, Permissions: []string{"catalog:read", "profiles:read"}})
	repo.AddClient(models.ApiClient{Name: "disabled", ApiKey: disabledKey, IsActive: false, Permissions: []string{"*"}})

	svc := advisor.NewManager(loader, repo, cache.NewMemoryCache(0), matching.Weights{})
	checks := health.NewRegistry(0)
	srv := NewServer(config.ServerConfig{}, svc, checks, repo)
	return &testServer{t: t, handler: srv.Router(), checks: checks}
}

func (ts *testServer) do(method, path, key string, body interface{}) (int, envelope) {
	ts.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			ts.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		ts.t.Fatalf("%s %s: decode response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func (ts *testServer) createCareerProfile() string {
	ts.t.Helper()
	status, env := ts.do(http.MethodPost, "/api/v1/profiles", adminKey, map[string]interface{}{
		"name":      "Ravi",
		"mode":      "career",
		"level":     "Fresh Graduate",
		"skills":    []string{"Programming", "Python", "SQL"},
		"interests": []string{"Technology"},
	})
	if status != http.StatusCreated {
		ts.t.Fatalf("create profile: status %d, error %+v", status, env.Error)
	}
	var p models.Profile
	decodeData(ts.t, env, &p)
	if p.ID == "" {
		ts.t.Fatal("create profile: empty id")
	}
	return p.ID
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	status, env := ts.do(http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("health: status %d success %v", status, env.Success)
	}

	status, _ = ts.do(http.MethodGet, "/ready", "", nil)
	if status != http.StatusOK {
		t.Fatalf("ready: status %d, want 200", status)
	}

	ts.checks.Register("redis", health.CheckerFunc(func(context.Context) error {
		return errors.New("connection refused")
	}))
	status, env = ts.do(http.MethodGet, "/ready", "", nil)
	if status != http.StatusServiceUnavailable {
		t.Fatalf("ready with failing check: status %d, want 503", status)
	}
	var report health.Report
	decodeData(t, env, &report)
	if report.Checks["redis"] != "connection refused" {
		t.Errorf("report checks = %v", report.Checks)
	}
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		key    string
		status int
		code   string
	}{
		{"missing key", http.MethodGet, "/api/v1/catalog/careers", "", http.StatusUnauthorized, "missing_api_key"},
		{"unknown key", http.MethodGet, "/api/v1/catalog/careers", "pw_nope_nope_nope", http.StatusUnauthorized, "invalid_api_key"},
		{"inactive client", http.MethodGet, "/api/v1/catalog/careers", disabledKey, http.StatusUnauthorized, "client_inactive"},
		{"missing permission", http.MethodPost, "/api/v1/profiles", readOnlyKey, http.StatusForbidden, "permission_denied"},
		{"granted", http.MethodGet, "/api/v1/catalog/careers", readOnlyKey, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := ts.do(tt.method, tt.path, tt.key, map[string]string{})
			if status != tt.status {
				t.Fatalf("status = %d, want %d", status, tt.status)
			}
			if tt.code == "" {
				return
			}
			if env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %q", env.Error, tt.code)
			}
		})
	}
}

func TestXAPIKeyHeader(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set("X-API-Key", readOnlyKey)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCreateProfileValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"mode": "career", "level": "Fresh Graduate"}},
		{"unknown mode", map[string]interface{}{"name": "A", "mode": "hobby", "level": "Fresh Graduate"}},
		{"level from other mode", map[string]interface{}{"name": "A", "mode": "career", "level": "After 10th Grade"}},
		{"required skills", map[string]interface{}{"name": "A", "mode": "career", "level": "Fresh Graduate", "require_skills": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := ts.do(http.MethodPost, "/api/v1/profiles", adminKey, tt.body)
			if status != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", status)
			}
			if env.Error == nil || env.Error.Code != "validation_error" {
				t.Errorf("error = %+v", env.Error)
			}
		})
	}

	status, _ := ts.do(http.MethodGet, "/api/v1/profiles/does-not-exist", adminKey, nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown profile: status %d, want 404", status)
	}
}

func TestMatchesEndpoint(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createCareerProfile()

	status, env := ts.do(http.MethodGet, "/api/v1/profiles/"+id+"/matches?limit=2", adminKey, nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, error %+v", status, env.Error)
	}
	var result advisor.MatchResult
	decodeData(t, env, &result)
	if len(result.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(result.Matches))
	}
	if result.Matches[0].CareerPath.ID != "data-scientist" {
		t.Errorf("top match = %q, want data-scientist", result.Matches[0].CareerPath.ID)
	}

	status, _ = ts.do(http.MethodGet, "/api/v1/profiles/"+id+"/matches?limit=abc", adminKey, nil)
	if status != http.StatusBadRequest {
		t.Errorf("bad limit: status %d, want 400", status)
	}
}

func TestRoadmapLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createCareerProfile()

	status, env := ts.do(http.MethodGet, "/api/v1/profiles/"+id+"/roadmaps/options", adminKey, nil)
	if status != http.StatusOK {
		t.Fatalf("options: status %d", status)
	}
	var sel advisor.Selection
	decodeData(t, env, &sel)
	if len(sel.Roadmaps) != 2 || sel.Roadmaps[0].TemplateID != "data-science" || sel.Roadmaps[1].TemplateID != "frontend" {
		t.Fatalf("options = %+v", sel.Roadmaps)
	}

	status, env = ts.do(http.MethodPost, "/api/v1/profiles/"+id+"/roadmaps", adminKey, map[string]string{"template_id": "product-manager"})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("adopt inapplicable: status %d, want 422", status)
	}

	status, env = ts.do(http.MethodPost, "/api/v1/profiles/"+id+"/roadmaps", adminKey, map[string]string{"template_id": "data-science"})
	if status != http.StatusCreated {
		t.Fatalf("adopt: status %d, error %+v", status, env.Error)
	}
	var view advisor.RoadmapView
	decodeData(t, env, &view)
	roadmapID := view.Roadmap.ID
	if view.Roadmap.Version != 1 || view.Summary.Next.ID != "c1" {
		t.Fatalf("adopted roadmap = %+v summary %+v", view.Roadmap, view.Summary)
	}

	toggle := "/api/v1/roadmaps/" + roadmapID + "/milestones/c1/toggle"
	status, env = ts.do(http.MethodPost, toggle, adminKey, map[string]int{"expected_version": 1})
	if status != http.StatusOK {
		t.Fatalf("toggle: status %d, error %+v", status, env.Error)
	}
	decodeData(t, env, &view)
	if view.Roadmap.Version != 2 || view.Summary.CompletedCount != 1 || view.Summary.ProgressPercentage != 33 {
		t.Fatalf("after toggle: version %d summary %+v", view.Roadmap.Version, view.Summary)
	}
	if len(view.Board.Completed) != 1 || view.Board.Completed[0].ID != "c1" {
		t.Errorf("board completed = %+v", view.Board.Completed)
	}

	status, env = ts.do(http.MethodPost, toggle, adminKey, map[string]int{"expected_version": 1})
	if status != http.StatusConflict || env.Error.Code != "version_conflict" {
		t.Fatalf("stale toggle: status %d error %+v", status, env.Error)
	}

	status, _ = ts.do(http.MethodPost, "/api/v1/roadmaps/"+roadmapID+"/milestones/zz/toggle", adminKey, nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown milestone: status %d, want 404", status)
	}

	status, env = ts.do(http.MethodGet, "/api/v1/roadmaps/"+roadmapID+"/summary", adminKey, nil)
	if status != http.StatusOK {
		t.Fatalf("summary: status %d", status)
	}
	var summary struct {
		CompletedCount int `json:"completed_count"`
		Total          int `json:"total"`
	}
	decodeData(t, env, &summary)
	if summary.CompletedCount != 1 || summary.Total != 3 {
		t.Errorf("summary = %+v", summary)
	}

	status, env = ts.do(http.MethodGet, "/api/v1/profiles/"+id+"/roadmaps", adminKey, nil)
	if status != http.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	var list struct {
		Total int `json:"total"`
	}
	decodeData(t, env, &list)
	if list.Total != 1 {
		t.Errorf("listed roadmaps = %d, want 1", list.Total)
	}

	status, _ = ts.do(http.MethodGet, "/api/v1/roadmaps/missing", adminKey, nil)
	if status != http.StatusNotFound {
		t.Errorf("missing roadmap: status %d, want 404", status)
	}
}

func TestCourseEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createCareerProfile()
	base := "/api/v1/profiles/" + id

	status, env := ts.do(http.MethodGet, base+"/courses?category=Technical", adminKey, nil)
	if status != http.StatusOK {
		t.Fatalf("courses: status %d", status)
	}
	var listing advisor.CourseListing
	decodeData(t, env, &listing)
	if len(listing.Courses) != 4 {
		t.Fatalf("technical courses = %d, want 4", len(listing.Courses))
	}

	status, env = ts.do(http.MethodPost, base+"/courses/sql-for-data-science/enroll", adminKey, nil)
	if status != http.StatusOK {
		t.Fatalf("enroll: status %d error %+v", status, env.Error)
	}

	status, env = ts.do(http.MethodPut, base+"/courses/sql-for-data-science/progress", adminKey, map[string]int{"progress": 150})
	if status != http.StatusBadRequest {
		t.Fatalf("progress 150: status %d, want 400", status)
	}

	status, env = ts.do(http.MethodPut, base+"/courses/sql-for-data-science/progress", adminKey, map[string]int{"progress": 100})
	if status != http.StatusOK {
		t.Fatalf("progress: status %d error %+v", status, env.Error)
	}
	var course models.Course
	decodeData(t, env, &course)
	if !course.Enrolled || course.Progress != 100 {
		t.Errorf("course = %+v", course)
	}

	status, _ = ts.do(http.MethodPost, base+"/courses/underwater-basket-weaving/enroll", adminKey, nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown course: status %d, want 404", status)
	}

	status, env = ts.do(http.MethodGet, base+"/learning-stats", adminKey, nil)
	if status != http.StatusOK {
		t.Fatalf("learning stats: status %d", status)
	}
	var overview advisor.LearningOverview
	decodeData(t, env, &overview)
	if overview.Stats.EnrolledCount != 1 || overview.Stats.CompletedCount != 1 || overview.Stats.OverallProgress != 100 {
		t.Errorf("stats = %+v", overview.Stats)
	}
	if overview.UnlockedCount == 0 {
		t.Error("expected at least the First Step achievement")
	}
}

func TestCatalogEndpoints(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path  string
		total int
	}{
		{"/api/v1/catalog/careers", 3},
		{"/api/v1/catalog/courses", 6},
		{"/api/v1/catalog/roadmaps", 7},
		{"/api/v1/catalog/achievements", 6},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, env := ts.do(http.MethodGet, tt.path, readOnlyKey, nil)
			if status != http.StatusOK {
				t.Fatalf("status = %d", status)
			}
			var body struct {
				Total   int    `json:"total"`
				Version string `json:"version"`
			}
			decodeData(t, env, &body)
			if body.Total != tt.total {
				t.Errorf("total = %d, want %d", body.Total, tt.total)
			}
			if body.Version == "" || body.Version == "empty" {
				t.Errorf("version = %q", body.Version)
			}
		})
	}

	status, _ := ts.do(http.MethodGet, "/api/v1/catalog/roadmaps/nope", readOnlyKey, nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown template: status %d, want 404", status)
	}
}
