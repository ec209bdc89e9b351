package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMentionSpans(t *testing.T) {
	known := map[string]bool{"alice": true, "bob.smith": true}

	t.Run("single mention mid-text", func(t *testing.T) {
		spans := MentionSpans("thanks @alice for the tip", known)
		require.Len(t, spans, 3)
		assert.Equal(t, Span{Text: "thanks "}, spans[0])
		assert.Equal(t, Span{Text: "@alice", Mention: true, Name: "alice"}, spans[1])
		assert.Equal(t, Span{Text: " for the tip"}, spans[2])
	})

	t.Run("dots and hyphens are part of the token", func(t *testing.T) {
		spans := MentionSpans("ping @bob.smith", known)
		require.Len(t, spans, 2)
		assert.Equal(t, "bob.smith", spans[1].Name)
	})

	t.Run("unknown name stays plain", func(t *testing.T) {
		spans := MentionSpans("hey @stranger what's up", known)
		require.Len(t, spans, 1)
		assert.Equal(t, "hey @stranger what's up", spans[0].Text)
		assert.False(t, spans[0].Mention)
	})

	t.Run("matching is case-sensitive", func(t *testing.T) {
		spans := MentionSpans("hey @Alice", known)
		require.Len(t, spans, 1)
		assert.False(t, spans[0].Mention)
	})

	t.Run("multiple mentions", func(t *testing.T) {
		spans := MentionSpans("@alice meet @bob.smith", known)
		require.Len(t, spans, 3)
		assert.True(t, spans[0].Mention)
		assert.Equal(t, Span{Text: " meet "}, spans[1])
		assert.True(t, spans[2].Mention)
	})

	t.Run("bare at sign", func(t *testing.T) {
		spans := MentionSpans("a @ b", known)
		require.Len(t, spans, 1)
		assert.Equal(t, "a @ b", spans[0].Text)
	})

	t.Run("empty content", func(t *testing.T) {
		assert.Nil(t, MentionSpans("", known))
	})

	t.Run("no known names", func(t *testing.T) {
		spans := MentionSpans("hi @alice", nil)
		require.Len(t, spans, 1)
		assert.False(t, spans[0].Mention)
	})
}
