package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var dest []string
	assert.False(t, c.Get(ctx, "suggest:lap", &dest))

	// All operations are no-ops on a nil cache.
	c.Set(ctx, "suggest:lap", []string{"laptop"})
	c.Invalidate(ctx, "suggest:")
	assert.NoError(t, c.Close())
}
