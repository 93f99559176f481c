package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/terra-clan/pathway-engine/internal/models"
)

// Client is a Go SDK for the pathway-engine API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new pathway-engine client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a structured error returned by the server
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s - %s", e.StatusCode, e.Code, e.Message)
}

// IsCode reports whether err is an APIError with the given code
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// CreateProfileRequest is the body of CreateProfile
type CreateProfileRequest struct {
	models.Profile
	RequireSkills    bool `json:"require_skills,omitempty"`
	RequireInterests bool `json:"require_interests,omitempty"`
}

// MatchResult is a ranked list of career paths
type MatchResult struct {
	ProfileID      string              `json:"profile_id"`
	CatalogVersion string              `json:"catalog_version"`
	Matches        []models.MatchScore `json:"matches"`
}

// Selection lists the roadmaps a profile may adopt
type Selection struct {
	ProfileID      string           `json:"profile_id"`
	CatalogVersion string           `json:"catalog_version"`
	Roadmaps       []models.Roadmap `json:"roadmaps"`
}

// Summary is the progress aggregate of a roadmap
type Summary struct {
	CompletedCount     int `json:"completed_count"`
	Total              int `json:"total"`
	ProgressPercentage int `json:"progress_percentage"`
	NextMilestone      struct {
		ID          string `json:"id,omitempty"`
		Title       string `json:"title"`
		AllComplete bool   `json:"all_complete"`
	} `json:"next_milestone"`
}

// RoadmapView is a roadmap together with its progress views
type RoadmapView struct {
	Roadmap models.Roadmap `json:"roadmap"`
	Summary Summary        `json:"summary"`
	Board   struct {
		Pending   []models.Milestone `json:"pending"`
		Completed []models.Milestone `json:"completed"`
	} `json:"board"`
}

// CourseListing is the filtered course list of a profile
type CourseListing struct {
	ProfileID string          `json:"profile_id"`
	Courses   []models.Course `json:"courses"`
	Buckets   []struct {
		Urgency models.Urgency  `json:"urgency"`
		Label   string          `json:"label"`
		Courses []models.Course `json:"courses"`
	} `json:"buckets"`
	Recommended []models.Course `json:"recommended"`
}

// LearningOverview aggregates a profile's learning progress
type LearningOverview struct {
	ProfileID     string               `json:"profile_id"`
	Stats         models.LearningStats `json:"stats"`
	Achievements  []models.Achievement `json:"achievements"`
	UnlockedCount int                  `json:"unlocked_count"`
}

// CourseFilter narrows ListCourses; empty fields mean "All"
type CourseFilter struct {
	Level    string
	Category string
}

// CreateProfile validates and stores a profile
func (c *Client) CreateProfile(ctx context.Context, req CreateProfileRequest) (*models.Profile, error) {
	var p models.Profile
	if err := c.call(ctx, http.MethodPost, "/api/v1/profiles", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfile retrieves a profile by ID
func (c *Client) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := c.call(ctx, http.MethodGet, "/api/v1/profiles/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ComputeMatches ranks career paths for a profile; limit <= 0 returns all
func (c *Client) ComputeMatches(ctx context.Context, profileID string, limit int) (*MatchResult, error) {
	path := "/api/v1/profiles/" + url.PathEscape(profileID) + "/matches"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var result MatchResult
	if err := c.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RoadmapOptions lists the roadmaps applicable to a profile
func (c *Client) RoadmapOptions(ctx context.Context, profileID string) (*Selection, error) {
	var sel Selection
	if err := c.call(ctx, http.MethodGet, "/api/v1/profiles/"+url.PathEscape(profileID)+"/roadmaps/options", nil, &sel); err != nil {
		return nil, err
	}
	return &sel, nil
}

// AdoptRoadmap instantiates a roadmap template for a profile
func (c *Client) AdoptRoadmap(ctx context.Context, profileID, templateID string) (*RoadmapView, error) {
	body := map[string]string{"template_id": templateID}
	var view RoadmapView
	if err := c.call(ctx, http.MethodPost, "/api/v1/profiles/"+url.PathEscape(profileID)+"/roadmaps", body, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ListRoadmaps lists the roadmaps a profile adopted
func (c *Client) ListRoadmaps(ctx context.Context, profileID string) ([]models.Roadmap, error) {
	var result struct {
		Roadmaps []models.Roadmap `json:"roadmaps"`
		Total    int              `json:"total"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/profiles/"+url.PathEscape(profileID)+"/roadmaps", nil, &result); err != nil {
		return nil, err
	}
	return result.Roadmaps, nil
}

// GetRoadmap retrieves an adopted roadmap
func (c *Client) GetRoadmap(ctx context.Context, id string) (*RoadmapView, error) {
	var view RoadmapView
	if err := c.call(ctx, http.MethodGet, "/api/v1/roadmaps/"+url.PathEscape(id), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ToggleMilestone flips a milestone. A positive expectedVersion makes the
// server reject the toggle with "version_conflict" if the roadmap changed.
func (c *Client) ToggleMilestone(ctx context.Context, roadmapID, milestoneID string, expectedVersion int) (*RoadmapView, error) {
	path := fmt.Sprintf("/api/v1/roadmaps/%s/milestones/%s/toggle", url.PathEscape(roadmapID), url.PathEscape(milestoneID))
	body := map[string]int{"expected_version": expectedVersion}
	var view RoadmapView
	if err := c.call(ctx, http.MethodPost, path, body, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ListCourses lists catalog courses with the profile's enrollment overlaid
func (c *Client) ListCourses(ctx context.Context, profileID string, filter CourseFilter) (*CourseListing, error) {
	q := url.Values{}
	if filter.Level != "" {
		q.Set("level", filter.Level)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	path := "/api/v1/profiles/" + url.PathEscape(profileID) + "/courses"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var listing CourseListing
	if err := c.call(ctx, http.MethodGet, path, nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Enroll enrolls a profile in a course
func (c *Client) Enroll(ctx context.Context, profileID, courseID string) (*models.Course, error) {
	path := fmt.Sprintf("/api/v1/profiles/%s/courses/%s/enroll", url.PathEscape(profileID), url.PathEscape(courseID))
	var course models.Course
	if err := c.call(ctx, http.MethodPost, path, nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// UpdateProgress reports course progress (0-100)
func (c *Client) UpdateProgress(ctx context.Context, profileID, courseID string, progress int) (*models.Course, error) {
	path := fmt.Sprintf("/api/v1/profiles/%s/courses/%s/progress", url.PathEscape(profileID), url.PathEscape(courseID))
	var course models.Course
	if err := c.call(ctx, http.MethodPut, path, map[string]int{"progress": progress}, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// LearningStats retrieves a profile's learning statistics and achievements
func (c *Client) LearningStats(ctx context.Context, profileID string) (*LearningOverview, error) {
	var overview LearningOverview
	if err := c.call(ctx, http.MethodGet, "/api/v1/profiles/"+url.PathEscape(profileID)+"/learning-stats", nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// ListCareers retrieves the career path catalog
func (c *Client) ListCareers(ctx context.Context) ([]models.CareerPath, error) {
	var result struct {
		Careers []models.CareerPath `json:"careers"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/catalog/careers", nil, &result); err != nil {
		return nil, err
	}
	return result.Careers, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, nil)
}

// call sends body as JSON and decodes the envelope's data into out
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	status, resp, err := c.doRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}

	var result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response (HTTP %d): %w", status, err)
	}

	if !result.Success || status >= 400 {
		if result.Error == nil {
			result.Error = &APIError{Code: "unknown", Message: http.StatusText(status)}
		}
		result.Error.StatusCode = status
		return result.Error
	}

	if out == nil || len(result.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}
