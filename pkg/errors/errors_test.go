package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create episode: %w", BadRequest("title is required"))

	assert.True(t, IsBadRequest(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsExternal(err))

	assert.True(t, IsBadRequest(Validation("episode number must be a whole number")))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", BadRequest("title is required"), "title is required"},
		{"not found", NotFound("series not found"), "series not found"},
		{"external with cause", External("Google Drive download failed", fmt.Errorf("status 403")), "Google Drive download failed: status 403"},
		{"internal is hidden", Wrap(ErrorTypeInternal, "db exploded", fmt.Errorf("disk full")), "Something went wrong, please try again"},
		{"plain error is hidden", fmt.Errorf("boom"), "Something went wrong, please try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(fmt.Errorf("UNIQUE constraint failed: series.id")))
	assert.False(t, IsDuplicateError(nil))
	assert.False(t, IsDuplicateError(fmt.Errorf("no such table")))
}
