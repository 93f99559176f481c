package models

import (
	"strings"
	"time"
)

// ApiClient is a presentation-layer caller allowed to use the API
type ApiClient struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	ApiKey      string     `json:"-"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	Permissions []string   `json:"permissions"` // e.g. "roadmaps:write", "courses:*", "*"
}

// HasPermission checks an exact, resource-wildcard or global-wildcard grant
func (c *ApiClient) HasPermission(required string) bool {
	if c == nil || !c.IsActive {
		return false
	}

	resource, _, _ := strings.Cut(required, ":")
	for _, perm := range c.Permissions {
		switch perm {
		case "*", required, resource + ":*":
			return true
		}
	}
	return false
}

// MaskedApiKey returns the first 8 characters of the key for logging
func (c *ApiClient) MaskedApiKey() string {
	return MaskKey(c.ApiKey)
}

// MaskKey hides all but the key prefix
func MaskKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:8] + "..."
}
