package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCode(t *testing.T) {
	err := New(InvalidInput, "query cannot be empty")
	assert.Equal(t, InvalidInput, CodeOf(err))
	assert.Equal(t, "query cannot be empty", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, Timeout, "request failed")
	require.Error(t, err)
	assert.Equal(t, Timeout, CodeOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, Unknown, "ignored"))
	assert.NoError(t, WithFields(nil, Fields{"key": "value"}))
}

func TestWithFieldsMergesAndRenders(t *testing.T) {
	err := WithFields(
		New(ResourceNotFound, "key not found"),
		Fields{"key": "session-1"},
	)
	err = WithFields(err, Fields{"store": "sqlite"})

	assert.Equal(t, ResourceNotFound, CodeOf(err))
	assert.Contains(t, err.Error(), "key=session-1")
	assert.Contains(t, err.Error(), "store=sqlite")

	var typed *Error
	require.True(t, stderrors.As(err, &typed))
	assert.Len(t, typed.ErrorFields(), 2)
}

func TestWithFieldsOnForeignError(t *testing.T) {
	err := WithFields(fmt.Errorf("plain"), Fields{"n": 1})
	assert.Equal(t, Unknown, CodeOf(err))
	assert.Contains(t, err.Error(), "n=1")
}

func TestIs(t *testing.T) {
	err := New(RateLimited, "too many requests")
	assert.True(t, Is(err, RateLimited))
	assert.False(t, Is(err, Timeout))
	assert.True(t, Is(fmt.Errorf("other"), Unknown))
}
