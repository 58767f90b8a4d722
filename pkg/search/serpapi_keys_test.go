package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSerpAPIKeys(t *testing.T) {
	assert.Empty(t, ParseSerpAPIKeys(""))
	assert.Empty(t, ParseSerpAPIKeys("  , ,"))
	assert.Equal(t, []string{"a"}, ParseSerpAPIKeys("a"))
	assert.Equal(t, []string{"a", "b"}, ParseSerpAPIKeys(" a , b "))
	assert.Equal(t, []string{"a", "b"}, ParseSerpAPIKeys("a,b,a"))
}

func TestHasSerpAPIKeys(t *testing.T) {
	assert.False(t, HasSerpAPIKeys(""))
	assert.False(t, HasSerpAPIKeys(" , "))
	assert.True(t, HasSerpAPIKeys("key"))
}

func TestShuffledSerpAPIKeysKeepsAllKeys(t *testing.T) {
	keys := ShuffledSerpAPIKeys("a,b,c,d")
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, keys)

	// Single key shortcut.
	assert.Equal(t, []string{"only"}, ShuffledSerpAPIKeys("only"))
}

func TestIsSerpAPIRateLimited(t *testing.T) {
	assert.True(t, IsSerpAPIRateLimited(429, ""))
	assert.True(t, IsSerpAPIRateLimited(200, "Rate limit reached"))
	assert.True(t, IsSerpAPIRateLimited(200, "Too many requests"))
	assert.True(t, IsSerpAPIRateLimited(200, "You are out of searches per month"))
	assert.True(t, IsSerpAPIRateLimited(200, "Insufficient searches left"))
	assert.True(t, IsSerpAPIRateLimited(200, "Your quota was exceeded"))

	assert.False(t, IsSerpAPIRateLimited(200, ""))
	assert.False(t, IsSerpAPIRateLimited(500, "internal error"))
	assert.False(t, IsSerpAPIRateLimited(200, "quota summary"))
}
