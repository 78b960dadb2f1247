package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemKey(t *testing.T) {
	assert.Equal(t, "branches:list:0:cities", itemKey(0, "cities"))
	assert.Equal(t, "branches:list:12:type=Atm", itemKey(12, "type=Atm"))
	assert.NotEqual(t, itemKey(1, "all"), itemKey(2, "all"))
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	c := NewNoopCache()

	assert.NoError(t, c.Set(ctx, "all", 0, []byte("[]")))

	data, generation, err := c.Get(ctx, "all")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Nil(t, data)
	assert.Zero(t, generation)

	assert.NoError(t, c.Invalidate(ctx))
}
