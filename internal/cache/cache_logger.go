package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateProjectCache drops the cached project snapshot, list views, and
// the project's stats entries. Called after any project mutation.
func InvalidateProjectCache(ctx context.Context, cm *CacheManager, projectID uint) {
	SafeDelete(ctx, cm.Project, fmt.Sprintf("id:%d", projectID))
	SafeInvalidatePattern(ctx, cm.Project, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("project:%d:*", projectID))
}

// InvalidateTaskCache drops the stats entries derived from a project's tasks.
// Called after any task mutation.
func InvalidateTaskCache(ctx context.Context, cm *CacheManager, projectID uint) {
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("project:%d:*", projectID))
}
