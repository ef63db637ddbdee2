package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("wrapped codes survive fmt wrapping", func(t *testing.T) {
		base := New(CodeMissingDocument, "income statement not uploaded")
		err := fmt.Errorf("calculate: %w", base)

		assert.True(t, HasCode(err, CodeMissingDocument))
		assert.Equal(t, CodeMissingDocument, CodeOf(err))
		assert.Equal(t, "income statement not uploaded", MessageOf(err))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeNotFound))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("errors.Is compares codes", func(t *testing.T) {
		err := New(CodeUnauthorized, "invalid token")
		require.ErrorIs(t, err, New(CodeUnauthorized, "something else"))
		assert.NotErrorIs(t, err, New(CodeNotFound, "invalid token"))
	})

	t.Run("wrap keeps cause", func(t *testing.T) {
		cause := errors.New("dial tcp: refused")
		err := Wrap(cause, CodeUnavailable, "provider request failed")
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "dial tcp: refused")
		assert.Nil(t, Wrap(nil, CodeInternal, "nothing"))
	})
}
