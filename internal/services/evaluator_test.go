package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicEvaluator(t *testing.T) {
	e := NewHeuristicEvaluator()

	t.Run("empty and garbage urls score zero", func(t *testing.T) {
		assert.Equal(t, 0, e.Evaluate(""))
		assert.Equal(t, 0, e.Evaluate("   "))
		assert.Equal(t, 0, e.Evaluate("://"))
	})

	t.Run("known hosts", func(t *testing.T) {
		assert.Equal(t, 40, e.Evaluate("https://linkedin.com/in/a"))
		assert.Equal(t, 25, e.Evaluate("https://github.com/a"))
		assert.Equal(t, 30, e.Evaluate("https://behance.net/a"))
		assert.Equal(t, 30, e.Evaluate("https://dribbble.com/a"))
	})

	t.Run("scheme is optional", func(t *testing.T) {
		assert.Equal(t, 25, e.Evaluate("github.com/a"))
	})

	t.Run("long path and query add signal", func(t *testing.T) {
		assert.Equal(t, 50, e.Evaluate("https://linkedin.com/in/a-very-long-handle"))
		assert.Equal(t, 55, e.Evaluate("https://linkedin.com/in/a-very-long-handle?tab=projects"))
	})

	t.Run("unknown host still gets path signal", func(t *testing.T) {
		assert.Equal(t, 10, e.Evaluate("https://example.com/my/long/profile/path"))
	})
}
