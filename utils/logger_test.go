package utils

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDefaultArgs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, getDefaultArgs(ctx))

	ctx = WithDefaultArgs(ctx, "store", "accounts")
	ctx = WithDefaultArgs(ctx, "key", "alice")
	assert.Equal(t, []any{"store", "accounts", "key", "alice"}, getDefaultArgs(ctx))
}

func TestCtxLogging(t *testing.T) {
	log := NewDefaultLogger(slog.LevelWarn)
	ctx := WithDefaultArgs(context.Background(), "store", "accounts")

	// below the configured level; exercises the arg merging path only
	log.DebugCtx(ctx, "applied op", "key", "alice")
	log.InfoCtx(ctx, "synchronized stores", "remote", "backup")
}
