package storage

import (
	"context"
	"errors"

	"github.com/terra-clan/pathway-engine/internal/models"
)

var (
	// ErrNotFound is returned by updates that target a missing row
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a roadmap was modified since it was read
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicate is returned when a record with the same id already exists
	ErrDuplicate = errors.New("record already exists")
)

// Repository defines the interface for pathway persistence.
// Getters return (nil, nil) when the record does not exist.
type Repository interface {
	// Profiles
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)

	// Roadmaps
	CreateRoadmap(ctx context.Context, r *models.Roadmap) error
	GetRoadmap(ctx context.Context, id string) (*models.Roadmap, error)
	ListRoadmaps(ctx context.Context, profileID string) ([]*models.Roadmap, error)
	// UpdateRoadmap stores r if the stored version still equals r.Version,
	// then increments r.Version.
	UpdateRoadmap(ctx context.Context, r *models.Roadmap) error

	// Enrollments
	UpsertEnrollment(ctx context.Context, e *models.Enrollment) error
	ListEnrollments(ctx context.Context, profileID string) ([]models.Enrollment, error)

	// API Clients
	GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
