package reload

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSource struct {
	changed bool
	err     error
	calls   atomic.Int32
}

func (f *fakeSource) Reload() (bool, error) {
	f.calls.Add(1)
	return f.changed, f.err
}

type fakeCache struct {
	invalidations atomic.Int32
}

func (f *fakeCache) InvalidateAll(context.Context) error {
	f.invalidations.Add(1)
	return nil
}

func TestReloadOnce(t *testing.T) {
	cases := []struct {
		name        string
		source      *fakeSource
		wantChanged bool
		wantCleared int32
	}{
		{name: "changed", source: &fakeSource{changed: true}, wantChanged: true, wantCleared: 1},
		{name: "unchanged", source: &fakeSource{}},
		{name: "error", source: &fakeSource{err: errors.New("bad yaml")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &fakeCache{}
			r := NewReloader(tc.source, c, time.Minute)

			if got := r.ReloadOnce(context.Background()); got != tc.wantChanged {
				t.Errorf("expected changed=%v, got %v", tc.wantChanged, got)
			}
			if got := c.invalidations.Load(); got != tc.wantCleared {
				t.Errorf("expected %d invalidations, got %d", tc.wantCleared, got)
			}
		})
	}
}

func TestReloaderStopsWithContext(t *testing.T) {
	src := &fakeSource{}
	r := NewReloader(src, &fakeCache{}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for src.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if src.calls.Load() < 2 {
		t.Fatalf("expected periodic reloads, got %d", src.calls.Load())
	}
}
