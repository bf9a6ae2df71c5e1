package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorMessage(t *testing.T) {
	cause := stderrors.New("connection refused")

	tests := []struct {
		name string
		err  *DomainError
		want string
	}{
		{
			name: "with cause",
			err:  Unavailable("connecting to NATS", cause),
			want: "UNAVAILABLE: connecting to NATS: connection refused",
		},
		{
			name: "without cause",
			err:  InvalidInput("unsupported platform: lagou", nil),
			want: "INVALID_INPUT: unsupported platform: lagou",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.NotEmpty(t, tt.err.StackTrace())
		})
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Internal("searching jobs", cause)

	assert.ErrorIs(t, err, cause)
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("boss: %w", Timeout("waiting for .job-list-box", nil))

	assert.Equal(t, ErrTypeTimeout, TypeOf(wrapped))
	assert.Equal(t, ErrTypeInternal, TypeOf(stderrors.New("plain")))
	assert.Equal(t, ErrTypeInternal, TypeOf(nil))
}

func TestIsFindsNestedKind(t *testing.T) {
	inner := NotFound("job not found", nil)
	outer := Internal("getting job detail", inner)

	require.True(t, Is(outer, ErrTypeNotFound))
	require.True(t, Is(outer, ErrTypeInternal))
	require.False(t, Is(outer, ErrTypeTimeout))
	require.False(t, Is(stderrors.New("plain"), ErrTypeInternal))
}
