package ai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBound(t *testing.T) {
	t.Run("should leave text within budget byte-for-byte unchanged", func(t *testing.T) {
		inputs := []string{
			"",
			"diff --git a/x b/x\n+line\n",
			strings.Repeat("a", 100),
			"ñandú 🚀 " + strings.Repeat("é", 40),
		}
		for _, in := range inputs {
			out, truncated := Bound(in, 100)
			assert.False(t, truncated)
			assert.Equal(t, in, out)
		}
	})

	t.Run("should cut to exactly the budget and append the marker", func(t *testing.T) {
		for _, size := range []int{11, 50, 1000, 50001} {
			in := strings.Repeat("x", size)
			budget := size - 1

			out, truncated := Bound(in, budget)

			assert.True(t, truncated)
			assert.Equal(t, budget+utf8.RuneCountInString(TruncationMarker), utf8.RuneCountInString(out))
			assert.True(t, strings.HasPrefix(out, in[:budget]))
			assert.True(t, strings.HasSuffix(out, TruncationMarker))
		}
	})

	t.Run("should count characters not bytes", func(t *testing.T) {
		in := strings.Repeat("é", 10)

		out, truncated := Bound(in, 4)

		assert.True(t, truncated)
		assert.Equal(t, "éééé"+TruncationMarker, out)
		assert.True(t, utf8.ValidString(out))
	})

	t.Run("should not truncate multi-byte text whose rune count fits", func(t *testing.T) {
		in := strings.Repeat("é", 10)

		out, truncated := Bound(in, 10)

		assert.False(t, truncated)
		assert.Equal(t, in, out)
	})

	t.Run("should treat a non-positive budget as unlimited", func(t *testing.T) {
		in := strings.Repeat("y", 10)

		out, truncated := Bound(in, 0)

		assert.False(t, truncated)
		assert.Equal(t, in, out)
	})

	t.Run("should truncate at the default budget", func(t *testing.T) {
		in := strings.Repeat("z", DefaultMaxDiffSize+10)

		out, truncated := Bound(in, DefaultMaxDiffSize)

		assert.True(t, truncated)
		assert.Len(t, out, DefaultMaxDiffSize+len(TruncationMarker))
	})
}
