package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError(ReasonTooFewDrugs, "at least 2 drugs are required")
	assert.Equal(t, "TooFewDrugs: at least 2 drugs are required", err.Error())

	var verr *ValidationError
	require.True(t, errors.As(error(err), &verr))
	assert.Equal(t, ReasonTooFewDrugs, verr.Reason)
}

func TestSourceUnavailableErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewSourceUnavailableError("RXNAV", cause)

	assert.Contains(t, err.Error(), "RXNAV")
	assert.ErrorIs(t, err, cause)

	bare := NewSourceUnavailableError("LOCAL", nil)
	assert.Equal(t, "source LOCAL unavailable", bare.Error())
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("therapeutic class", "experimental-agent")
	assert.Equal(t, "therapeutic class not found: experimental-agent", err.Error())

	wrapped := fmt.Errorf("looking up peers: %w", err)
	var nf *NotFoundError
	require.True(t, errors.As(wrapped, &nf))
	assert.Equal(t, "experimental-agent", nf.Key)
}

func TestCacheErrorUnwrap(t *testing.T) {
	cause := errors.New("redis: connection pool exhausted")
	err := NewCacheError("get", cause)

	assert.Contains(t, err.Error(), "cache get failed")
	assert.ErrorIs(t, err, cause)
}
