package utils

import (
	"context"
	"errors"

	"crm-mirror/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrLocationIDNotFound  = errors.New("locationID not found in context")
	ErrLocationIDNotString = errors.New("locationID in context is not a string")
	ErrRequestIDNotFound   = errors.New("requestID not found in context")
	ErrRequestIDNotString  = errors.New("requestID in context is not a string")
)

// GetLocationIDFromContext retrieves the tenant location ID from the context.
// It returns the location ID and an error if the value is not found or is not a string.
func GetLocationIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.LocationIDKey)
	if val == nil {
		return "", ErrLocationIDNotFound
	}
	locationID, ok := val.(string)
	if !ok {
		return "", ErrLocationIDNotString
	}
	return locationID, nil
}

// GetRequestIDFromContext retrieves the request correlation ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.RequestIDKey)
	if val == nil {
		return "", ErrRequestIDNotFound
	}
	requestID, ok := val.(string)
	if !ok {
		return "", ErrRequestIDNotString
	}
	return requestID, nil
}

// WithLocationID returns a child context carrying the tenant location ID.
func WithLocationID(ctx context.Context, locationID string) context.Context {
	return context.WithValue(ctx, contextkeys.LocationIDKey, locationID)
}

// WithRequestID returns a child context carrying the request correlation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}
