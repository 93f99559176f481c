// Package cache stores computed matches and roadmap selections.
// Keys embed the catalog version, so a reload makes old entries unreachable;
// InvalidateAll clears them eagerly.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Cache is a JSON value store
type Cache interface {
	// Get decodes the value under key into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// InvalidateAll drops every entry written by this cache
	InvalidateAll(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Key joins key parts with ':'
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Fingerprint hashes the JSON form of v into a short, stable key part
func Fingerprint(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}

// Noop never stores anything
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, any) error         { return nil }
func (Noop) InvalidateAll(context.Context) error            { return nil }
func (Noop) Ping(context.Context) error                     { return nil }
