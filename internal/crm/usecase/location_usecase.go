package usecase

import (
	"context"
	"errors"
	"strings"

	"crm-mirror/internal/crm/domain/model"
	apperrors "crm-mirror/internal/shared/errors"

	"github.com/golang-jwt/jwt/v5"
)

// LocationStatus is the connection state of one tenant.
type LocationStatus struct {
	LocationID    string `json:"locationId"`
	Name          string `json:"name"`
	HasCredential bool   `json:"hasApiKey"`
}

// CheckOrCreateLocation returns the tenant's connection state, lazily creating
// the tenant record with an empty credential on first sight.
func (e *Engine) CheckOrCreateLocation(ctx context.Context, locationID string) (*LocationStatus, error) {
	location, err := e.locations.Get(ctx, locationID)
	if errors.Is(err, apperrors.ErrLocationNotFound) {
		location = model.NewLocation(locationID)
		if err := e.locations.Create(ctx, location); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return &LocationStatus{
		LocationID:    location.LocationID,
		Name:          location.Name,
		HasCredential: location.HasCredential(),
	}, nil
}

// StoreCredential validates and stores a tenant API key. The key is first
// cross-checked against its own location claim when it is a parseable JWT,
// then proven against the remote with a cheap pipelines call before it is
// persisted.
func (e *Engine) StoreCredential(ctx context.Context, locationID, apiKey string) (*LocationStatus, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperrors.NewValidationError("api key is required")
	}

	if claimed := locationClaim(apiKey); claimed != "" && claimed != locationID {
		return nil, apperrors.NewCredentialScopeError("api key was issued for a different location").
			WithDetail("locationId", locationID).
			WithDetail("claimedLocationId", claimed)
	}

	remote := e.clients.ClientFor(apiKey, locationID)
	if _, err := remote.GetPipelines(ctx); err != nil {
		return nil, classifyRemoteError(err, "validate credential")
	}

	location, err := e.locations.UpdateCredential(ctx, locationID, apiKey)
	if errors.Is(err, apperrors.ErrLocationNotFound) {
		location = model.NewLocation(locationID)
		location.APIKey = apiKey
		if createErr := e.locations.Create(ctx, location); createErr != nil {
			return nil, createErr
		}
	} else if err != nil {
		return nil, err
	}

	e.logger.WithFields(map[string]interface{}{"location_id": locationID}).Info("credential stored")
	return &LocationStatus{
		LocationID:    location.LocationID,
		Name:          location.Name,
		HasCredential: true,
	}, nil
}

// locationClaim extracts the location claim from a private-integration token
// without verifying its signature; the remote validation call is the actual
// proof. Opaque (non-JWT) keys yield an empty claim.
func locationClaim(apiKey string) string {
	token, _, err := jwt.NewParser().ParseUnverified(apiKey, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if claimed, ok := claims["location_id"].(string); ok {
		return claimed
	}
	if claimed, ok := claims["locationId"].(string); ok {
		return claimed
	}
	return ""
}

// GetSettings returns the tenant's board settings.
func (e *Engine) GetSettings(ctx context.Context, locationID string) (*model.Location, error) {
	return e.locations.Get(ctx, locationID)
}

// UpdateSettings applies a partial settings patch; only submitted fields are
// written.
func (e *Engine) UpdateSettings(ctx context.Context, locationID string, patch *model.SettingsPatch) (*model.Location, error) {
	set := map[string]interface{}{}
	if patch.PaginationEnabled != nil {
		set["paginationEnabled"] = *patch.PaginationEnabled
	}
	if patch.PageSize != nil {
		set["pageSize"] = *patch.PageSize
	}
	if patch.PaginationPerStage != nil {
		set["paginationPerStage"] = *patch.PaginationPerStage
	}
	if patch.SortField != nil {
		set["sortField"] = *patch.SortField
	}
	if patch.SortOrder != nil {
		set["sortOrder"] = *patch.SortOrder
	}
	if patch.CardFieldSettings != nil {
		set["cardFieldSettings"] = *patch.CardFieldSettings
	}
	if patch.QuickActions != nil {
		set["quickActions"] = *patch.QuickActions
	}
	if len(set) == 0 {
		return e.locations.Get(ctx, locationID)
	}
	return e.locations.UpdateSettings(ctx, locationID, set)
}
