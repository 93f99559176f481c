package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/terra-clan/pathway-engine/internal/models"
)

// MemoryRepository implements Repository in process memory.
// Values are copied in and out so callers never share state with the store.
type MemoryRepository struct {
	mu          sync.RWMutex
	profiles    map[string]models.Profile
	roadmaps    map[string]models.Roadmap
	enrollments map[string]map[string]models.Enrollment // profile -> course -> enrollment
	clients     map[string]models.ApiClient
	nextClient  int
}

// NewMemoryRepository constructs an empty MemoryRepository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		profiles:    make(map[string]models.Profile),
		roadmaps:    make(map[string]models.Roadmap),
		enrollments: make(map[string]map[string]models.Enrollment),
		clients:     make(map[string]models.ApiClient),
	}
}

// AddClient registers an API client; it is how local runs and tests seed keys
func (r *MemoryRepository) AddClient(client models.ApiClient) *models.ApiClient {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextClient++
	client.ID = r.nextClient
	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now().UTC()
	}
	client.Permissions = cloneStrings(client.Permissions)
	r.clients[client.ApiKey] = client
	return &client
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryRepository) Close() error {
	return nil
}

// CreateProfile stores a copy of p
func (r *MemoryRepository) CreateProfile(ctx context.Context, p *models.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; ok {
		return fmt.Errorf("profile %s: %w", p.ID, ErrDuplicate)
	}
	r.profiles[p.ID] = copyProfile(*p)
	return nil
}

// GetProfile returns a copy of the stored profile
func (r *MemoryRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	p = copyProfile(p)
	return &p, nil
}

// CreateRoadmap stores a deep copy of rm
func (r *MemoryRepository) CreateRoadmap(ctx context.Context, rm *models.Roadmap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roadmaps[rm.ID]; ok {
		return fmt.Errorf("roadmap %s: %w", rm.ID, ErrDuplicate)
	}
	r.roadmaps[rm.ID] = rm.Clone()
	return nil
}

// GetRoadmap returns a deep copy of the stored roadmap
func (r *MemoryRepository) GetRoadmap(ctx context.Context, id string) (*models.Roadmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.roadmaps[id]
	if !ok {
		return nil, nil
	}
	rm = rm.Clone()
	return &rm, nil
}

// ListRoadmaps returns a profile's roadmaps ordered by creation time
func (r *MemoryRepository) ListRoadmaps(ctx context.Context, profileID string) ([]*models.Roadmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Roadmap
	for _, rm := range r.roadmaps {
		if rm.ProfileID != profileID {
			continue
		}
		c := rm.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateRoadmap replaces milestones if the stored version matches rm.Version
func (r *MemoryRepository) UpdateRoadmap(ctx context.Context, rm *models.Roadmap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.roadmaps[rm.ID]
	if !ok {
		return fmt.Errorf("roadmap %s: %w", rm.ID, ErrNotFound)
	}
	if stored.Version != rm.Version {
		return fmt.Errorf("roadmap %s at version %d: %w", rm.ID, rm.Version, ErrVersionConflict)
	}

	next := rm.Clone()
	next.Version++
	next.CreatedAt = stored.CreatedAt
	r.roadmaps[rm.ID] = next
	rm.Version = next.Version
	return nil
}

// UpsertEnrollment creates or replaces the (profile, course) enrollment
func (r *MemoryRepository) UpsertEnrollment(ctx context.Context, e *models.Enrollment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byCourse, ok := r.enrollments[e.ProfileID]
	if !ok {
		byCourse = make(map[string]models.Enrollment)
		r.enrollments[e.ProfileID] = byCourse
	}
	byCourse[e.CourseID] = *e
	return nil
}

// ListEnrollments returns a profile's enrollments ordered by course id
func (r *MemoryRepository) ListEnrollments(ctx context.Context, profileID string) ([]models.Enrollment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	byCourse := r.enrollments[profileID]
	out := make([]models.Enrollment, 0, len(byCourse))
	for _, e := range byCourse {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

// GetClientByApiKey returns the client registered under apiKey
func (r *MemoryRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[apiKey]
	if !ok {
		return nil, nil
	}
	c.Permissions = cloneStrings(c.Permissions)
	return &c, nil
}

// UpdateClientLastUsed stamps the client's last use
func (r *MemoryRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[apiKey]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	c.LastUsedAt = &now
	r.clients[apiKey] = c
	return nil
}

func copyProfile(p models.Profile) models.Profile {
	p.Skills = cloneStrings(p.Skills)
	p.Interests = cloneStrings(p.Interests)
	return p
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}

var _ Repository = (*MemoryRepository)(nil)
var _ Repository = (*PostgresRepository)(nil)
