// Package cache holds the follow-count cache and the blog view de-duplication
// markers. Redis backs it in production; Memory is used when no redis address
// is configured.
package cache

import (
	"context"
	"time"
)

// FollowCounts counts approved edges only.
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

type Cache interface {
	// GetFollowCounts returns (counts, true, nil) on hit and (zero, false, nil) on miss.
	GetFollowCounts(ctx context.Context, userID uint) (FollowCounts, bool, error)
	SetFollowCounts(ctx context.Context, userID uint, counts FollowCounts) error
	InvalidateFollowCounts(ctx context.Context, userIDs ...uint) error
	// MarkViewed records that viewer saw blogID and reports whether this is
	// the first view inside ttl.
	MarkViewed(ctx context.Context, blogID, viewer string, ttl time.Duration) (bool, error)
	Close() error
}
