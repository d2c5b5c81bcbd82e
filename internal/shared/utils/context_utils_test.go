package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLocationIDFromContext(t *testing.T) {
	ctx := WithLocationID(context.Background(), "loc_123")

	locationID, err := GetLocationIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "loc_123", locationID)
}

func TestGetLocationIDFromContext_Missing(t *testing.T) {
	_, err := GetLocationIDFromContext(context.Background())
	assert.ErrorIs(t, err, ErrLocationIDNotFound)
}

func TestGetRequestIDFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")

	requestID, err := GetRequestIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-42", requestID)
}

func TestGetRequestIDFromContext_Missing(t *testing.T) {
	_, err := GetRequestIDFromContext(context.Background())
	assert.ErrorIs(t, err, ErrRequestIDNotFound)
}
