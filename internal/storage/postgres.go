package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/pathway-engine/internal/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 10
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Pool exposes the connection pool for migrations
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Profiles ---

// CreateProfile inserts a new profile
func (r *PostgresRepository) CreateProfile(ctx context.Context, p *models.Profile) error {
	skillsJSON, err := json.Marshal(p.Skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}
	interestsJSON, err := json.Marshal(p.Interests)
	if err != nil {
		return fmt.Errorf("failed to marshal interests: %w", err)
	}

	query := `
		INSERT INTO profiles (id, name, mode, level, skills, interests, learning_style, experience, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		string(p.Mode),
		p.Level,
		skillsJSON,
		interestsJSON,
		nullString(p.LearningStyle),
		nullString(p.Experience),
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profile %s: %w", p.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetProfile retrieves a profile by ID
func (r *PostgresRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, name, mode, level, skills, interests, learning_style, experience, created_at
		FROM profiles
		WHERE id = $1
	`

	var p models.Profile
	var mode string
	var learningStyle, experience sql.NullString
	var skillsJSON, interestsJSON []byte

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&mode,
		&p.Level,
		&skillsJSON,
		&interestsJSON,
		&learningStyle,
		&experience,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.Mode = models.Mode(mode)
	p.LearningStyle = learningStyle.String
	p.Experience = experience.String

	if err := json.Unmarshal(skillsJSON, &p.Skills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
	}
	if err := json.Unmarshal(interestsJSON, &p.Interests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interests: %w", err)
	}

	return &p, nil
}

// --- Roadmaps ---

// CreateRoadmap inserts an adopted roadmap
func (r *PostgresRepository) CreateRoadmap(ctx context.Context, rm *models.Roadmap) error {
	milestonesJSON, err := json.Marshal(rm.Milestones)
	if err != nil {
		return fmt.Errorf("failed to marshal milestones: %w", err)
	}

	query := `
		INSERT INTO roadmaps (id, template_id, profile_id, title, milestones, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		rm.ID,
		rm.TemplateID,
		rm.ProfileID,
		rm.Title,
		milestonesJSON,
		rm.Version,
		rm.CreatedAt,
		rm.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("roadmap %s: %w", rm.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create roadmap: %w", err)
	}

	return nil
}

const roadmapColumns = `id, template_id, profile_id, title, milestones, version, created_at, updated_at`

// GetRoadmap retrieves a roadmap by ID
func (r *PostgresRepository) GetRoadmap(ctx context.Context, id string) (*models.Roadmap, error) {
	query := `SELECT ` + roadmapColumns + ` FROM roadmaps WHERE id = $1`

	rm, err := scanRoadmap(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}
	return rm, nil
}

// ListRoadmaps returns the roadmaps adopted by a profile, oldest first
func (r *PostgresRepository) ListRoadmaps(ctx context.Context, profileID string) ([]*models.Roadmap, error) {
	query := `SELECT ` + roadmapColumns + ` FROM roadmaps WHERE profile_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roadmaps: %w", err)
	}
	defer rows.Close()

	var roadmaps []*models.Roadmap
	for rows.Next() {
		rm, err := scanRoadmap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roadmap: %w", err)
		}
		roadmaps = append(roadmaps, rm)
	}

	return roadmaps, rows.Err()
}

// UpdateRoadmap writes milestones with an optimistic version check
func (r *PostgresRepository) UpdateRoadmap(ctx context.Context, rm *models.Roadmap) error {
	milestonesJSON, err := json.Marshal(rm.Milestones)
	if err != nil {
		return fmt.Errorf("failed to marshal milestones: %w", err)
	}

	query := `
		UPDATE roadmaps
		SET milestones = $2, version = version + 1, updated_at = $3
		WHERE id = $1 AND version = $4
	`

	result, err := r.pool.Exec(ctx, query, rm.ID, milestonesJSON, rm.UpdatedAt, rm.Version)
	if err != nil {
		return fmt.Errorf("failed to update roadmap: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM roadmaps WHERE id = $1)`, rm.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check roadmap: %w", err)
		}
		if !exists {
			return fmt.Errorf("roadmap %s: %w", rm.ID, ErrNotFound)
		}
		return fmt.Errorf("roadmap %s at version %d: %w", rm.ID, rm.Version, ErrVersionConflict)
	}

	rm.Version++
	return nil
}

func scanRoadmap(row pgx.Row) (*models.Roadmap, error) {
	var rm models.Roadmap
	var milestonesJSON []byte

	err := row.Scan(
		&rm.ID,
		&rm.TemplateID,
		&rm.ProfileID,
		&rm.Title,
		&milestonesJSON,
		&rm.Version,
		&rm.CreatedAt,
		&rm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(milestonesJSON, &rm.Milestones); err != nil {
		return nil, fmt.Errorf("failed to unmarshal milestones: %w", err)
	}
	return &rm, nil
}

// --- Enrollments ---

// UpsertEnrollment creates or updates the enrollment for (profile, course)
func (r *PostgresRepository) UpsertEnrollment(ctx context.Context, e *models.Enrollment) error {
	query := `
		INSERT INTO enrollments (profile_id, course_id, progress, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile_id, course_id)
		DO UPDATE SET progress = EXCLUDED.progress, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, e.ProfileID, e.CourseID, e.Progress, e.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert enrollment: %w", err)
	}
	return nil
}

// ListEnrollments returns all enrollments of a profile
func (r *PostgresRepository) ListEnrollments(ctx context.Context, profileID string) ([]models.Enrollment, error) {
	query := `
		SELECT profile_id, course_id, progress, updated_at
		FROM enrollments
		WHERE profile_id = $1
		ORDER BY course_id
	`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ProfileID, &e.CourseID, &e.Progress, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}

	return enrollments, rows.Err()
}

// --- API Clients ---

// GetClientByApiKey retrieves an API client by its key
func (r *PostgresRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	query := `
		SELECT id, name, api_key, is_active, created_at, last_used_at, permissions
		FROM api_clients
		WHERE api_key = $1
	`

	var client models.ApiClient
	var lastUsedAt sql.NullTime
	var permissionsJSON []byte

	err := r.pool.QueryRow(ctx, query, apiKey).Scan(
		&client.ID,
		&client.Name,
		&client.ApiKey,
		&client.IsActive,
		&client.CreatedAt,
		&lastUsedAt,
		&permissionsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get api client: %w", err)
	}

	if lastUsedAt.Valid {
		client.LastUsedAt = &lastUsedAt.Time
	}

	if permissionsJSON != nil {
		if err := json.Unmarshal(permissionsJSON, &client.Permissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
		}
	}

	return &client, nil
}

// UpdateClientLastUsed updates the last_used_at timestamp for a client
func (r *PostgresRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	query := `UPDATE api_clients SET last_used_at = NOW() WHERE api_key = $1`

	if _, err := r.pool.Exec(ctx, query, apiKey); err != nil {
		return fmt.Errorf("failed to update client last_used_at: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
