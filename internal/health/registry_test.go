package health

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestRegistryCheck(t *testing.T) {
	r := NewRegistry(time.Second)
	r.Register("postgres", CheckerFunc(func(context.Context) error { return nil }))
	r.Register("cache", CheckerFunc(func(context.Context) error { return errors.New("connection refused") }))

	if got := r.Names(); !reflect.DeepEqual(got, []string{"cache", "postgres"}) {
		t.Errorf("unexpected names %v", got)
	}

	rep := r.Check(context.Background())
	if rep.Healthy() {
		t.Fatal("expected degraded report")
	}
	if rep.Checks["postgres"] != "ok" || rep.Checks["cache"] != "connection refused" {
		t.Errorf("unexpected checks %v", rep.Checks)
	}
}

func TestRegistryTimeout(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)
	r.Register("slow", CheckerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	results := r.HealthCheckAll(context.Background())
	if !errors.Is(results["slow"], context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", results["slow"])
	}
}

func TestEmptyRegistryIsHealthy(t *testing.T) {
	if rep := NewRegistry(0).Check(context.Background()); !rep.Healthy() {
		t.Fatalf("expected ok, got %+v", rep)
	}
}
