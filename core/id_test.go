package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	t.Run("generated IDs carry the prefix and a valid ULID", func(t *testing.T) {
		id := NewID("tok")
		assert.True(t, strings.HasPrefix(id, "tok_"))
		assert.True(t, IsValidULID(id))
	})

	t.Run("prefix is lowercased and trimmed", func(t *testing.T) {
		id := NewID("  LST ")
		assert.True(t, strings.HasPrefix(id, "lst_"))
	})

	t.Run("IDs are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := NewID("rec")
			assert.False(t, seen[id])
			seen[id] = true
		}
	})

	t.Run("empty prefix panics", func(t *testing.T) {
		assert.Panics(t, func() { NewID("  ") })
	})
}

func TestIsValidULID(t *testing.T) {
	assert.True(t, IsValidULID(NewID("ing")))
	assert.False(t, IsValidULID("no-separator"))
	assert.False(t, IsValidULID("_01G0EZ1XTM37C5X11SQTDNCTM1"))
	assert.False(t, IsValidULID("tok_not-a-ulid"))
}
