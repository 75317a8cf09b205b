package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("Session not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, "Session not found", Message(err))
}

func TestStorageKeepsCauseAndExistingKinds(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage("insert message", cause)
	require.Error(t, err)
	assert.Equal(t, KindStorage, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "insert message: connection refused", err.Error())

	notFound := NotFound("Session not found")
	assert.Same(t, notFound, Storage("load session", notFound))
	assert.NoError(t, Storage("noop", nil))
}

func TestUnknownKindForPlainErrors(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "validation", KindValidation.String())
}
