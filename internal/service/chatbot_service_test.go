package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromQuestion(t *testing.T) {
	t.Run("short question used verbatim", func(t *testing.T) {
		assert.Equal(t, "What did we prescribe?", titleFromQuestion("  What did we prescribe?  "))
	})

	t.Run("blank question keeps default title", func(t *testing.T) {
		assert.Equal(t, defaultChatTitle, titleFromQuestion("   "))
	})

	t.Run("long question truncated at rune boundary", func(t *testing.T) {
		long := strings.Repeat("é", 80)
		title := titleFromQuestion(long)
		assert.True(t, strings.HasSuffix(title, "..."))
		assert.Equal(t, 63, len([]rune(title)))
	})
}
