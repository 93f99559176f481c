package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/terra-clan/pathway-engine/internal/models"
)

func TestMemoryProfiles(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	p := &models.Profile{ID: "p1", Name: "Asha", Mode: models.ModeCareer, Skills: []string{"Programming"}}
	if err := repo.CreateProfile(ctx, p); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if err := repo.CreateProfile(ctx, p); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	p.Skills[0] = "mutated"
	got, err := repo.GetProfile(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Skills[0] != "Programming" {
		t.Error("stored profile must not alias caller slices")
	}

	missing, err := repo.GetProfile(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for missing profile, got (%v, %v)", missing, err)
	}
}

func TestMemoryRoadmapVersioning(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	rm := &models.Roadmap{
		ID:         "r1",
		ProfileID:  "p1",
		Milestones: []models.Milestone{{ID: "m1", State: models.StatePending}},
		Version:    1,
	}
	if err := repo.CreateRoadmap(ctx, rm); err != nil {
		t.Fatalf("CreateRoadmap: %v", err)
	}

	first, _ := repo.GetRoadmap(ctx, "r1")
	second, _ := repo.GetRoadmap(ctx, "r1")

	first.Milestones[0].State = models.StateCompleted
	if err := repo.UpdateRoadmap(ctx, first); err != nil {
		t.Fatalf("UpdateRoadmap: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("expected version 2 after update, got %d", first.Version)
	}

	// second still holds version 1
	if err := repo.UpdateRoadmap(ctx, second); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if second.Milestones[0].IsCompleted() {
		t.Error("a reader's snapshot must not change after another write")
	}

	stored, _ := repo.GetRoadmap(ctx, "r1")
	if !stored.Milestones[0].IsCompleted() || stored.Version != 2 {
		t.Errorf("unexpected stored roadmap: %+v", stored)
	}

	if err := repo.UpdateRoadmap(ctx, &models.Roadmap{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryListRoadmaps(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"b", "a", "c"} {
		profile := "p1"
		if id == "c" {
			profile = "p2"
		}
		rm := &models.Roadmap{ID: id, ProfileID: profile, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.CreateRoadmap(ctx, rm); err != nil {
			t.Fatalf("CreateRoadmap: %v", err)
		}
	}

	list, err := repo.ListRoadmaps(ctx, "p1")
	if err != nil {
		t.Fatalf("ListRoadmaps: %v", err)
	}
	var ids []string
	for _, rm := range list {
		ids = append(ids, rm.ID)
	}
	if !reflect.DeepEqual(ids, []string{"b", "a"}) {
		t.Errorf("expected creation order [b a], got %v", ids)
	}
}

func TestMemoryEnrollments(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	for _, e := range []models.Enrollment{
		{ProfileID: "p1", CourseID: "sql", Progress: 10},
		{ProfileID: "p1", CourseID: "react", Progress: 0},
		{ProfileID: "p1", CourseID: "sql", Progress: 45},
		{ProfileID: "p2", CourseID: "sql", Progress: 100},
	} {
		e := e
		if err := repo.UpsertEnrollment(ctx, &e); err != nil {
			t.Fatalf("UpsertEnrollment: %v", err)
		}
	}

	got, err := repo.ListEnrollments(ctx, "p1")
	if err != nil {
		t.Fatalf("ListEnrollments: %v", err)
	}
	want := []models.Enrollment{
		{ProfileID: "p1", CourseID: "react", Progress: 0},
		{ProfileID: "p1", CourseID: "sql", Progress: 45},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	none, err := repo.ListEnrollments(ctx, "nobody")
	if err != nil || len(none) != 0 {
		t.Errorf("expected empty enrollments, got %v (%v)", none, err)
	}
}

func TestMemoryClients(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.AddClient(models.ApiClient{Name: "web", ApiKey: "pw_test_key", IsActive: true, Permissions: []string{"*"}})

	client, err := repo.GetClientByApiKey(ctx, "pw_test_key")
	if err != nil || client == nil {
		t.Fatalf("expected client, got (%v, %v)", client, err)
	}
	if client.LastUsedAt != nil {
		t.Error("expected no last use yet")
	}

	if err := repo.UpdateClientLastUsed(ctx, "pw_test_key"); err != nil {
		t.Fatalf("UpdateClientLastUsed: %v", err)
	}
	client, _ = repo.GetClientByApiKey(ctx, "pw_test_key")
	if client.LastUsedAt == nil {
		t.Error("expected last use to be recorded")
	}

	if c, _ := repo.GetClientByApiKey(ctx, "unknown"); c != nil {
		t.Error("expected nil for unknown key")
	}
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryRepository()
	if err := repo.Ping(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := repo.GetProfile(ctx, "p1"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPendingMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_seed.sql", "001_init.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755); err != nil {
		t.Fatal(err)
	}

	pending, err := PendingMigrations(dir, map[string]bool{})
	if err != nil {
		t.Fatalf("PendingMigrations: %v", err)
	}
	if !reflect.DeepEqual(pending, []string{"001_init.sql", "002_seed.sql"}) {
		t.Errorf("unexpected pending list: %v", pending)
	}

	pending, _ = PendingMigrations(dir, map[string]bool{"001_init.sql": true})
	if !reflect.DeepEqual(pending, []string{"002_seed.sql"}) {
		t.Errorf("expected applied migration to be skipped, got %v", pending)
	}

	if _, err := PendingMigrations(filepath.Join(dir, "missing"), nil); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestShippedMigrationsAreOrdered(t *testing.T) {
	dir := filepath.Join("..", "..", "migrations")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Skip("migrations directory not found, skipping")
	}
	pending, err := PendingMigrations(dir, nil)
	if err != nil {
		t.Fatalf("PendingMigrations: %v", err)
	}
	if len(pending) == 0 || pending[0] != "001_init.sql" {
		t.Errorf("expected 001_init.sql first, got %v", pending)
	}
}
