package usecase

import (
	"context"
	"errors"

	"crm-mirror/internal/crm/adapter/cache"
	"crm-mirror/internal/crm/domain/client"
	"crm-mirror/internal/crm/domain/model"
	"crm-mirror/internal/crm/domain/repository"
	apperrors "crm-mirror/internal/shared/errors"
	"crm-mirror/internal/shared/logger"
)

// Engine coordinates the local mirror against the remote CRM. All remote
// access is per-tenant: a client is built from the tenant's stored credential
// for the duration of one operation.
type Engine struct {
	locations     repository.LocationRepository
	pipelines     repository.PipelineRepository
	opportunities repository.OpportunityRepository
	customFields  repository.CustomFieldRepository
	clients       client.Factory
	directory     *cache.DirectoryCache
	logger        logger.Logger
}

// NewEngine wires the reconciliation engine. directory may be nil to disable
// directory caching.
func NewEngine(
	locations repository.LocationRepository,
	pipelines repository.PipelineRepository,
	opportunities repository.OpportunityRepository,
	customFields repository.CustomFieldRepository,
	clients client.Factory,
	directory *cache.DirectoryCache,
	log logger.Logger,
) *Engine {
	return &Engine{
		locations:     locations,
		pipelines:     pipelines,
		opportunities: opportunities,
		customFields:  customFields,
		clients:       clients,
		directory:     directory,
		logger:        log.WithComponent("usecase.engine"),
	}
}

// clientFor loads the tenant and builds a remote client from its credential.
func (e *Engine) clientFor(ctx context.Context, locationID string) (client.CRMClient, *model.Location, error) {
	location, err := e.locations.Get(ctx, locationID)
	if err != nil {
		return nil, nil, err
	}
	if !location.HasCredential() {
		return nil, nil, apperrors.NewCredentialInvalidError("api credential not configured").
			WithCause(apperrors.ErrCredentialMissing).
			WithDetail("locationId", locationID)
	}
	return e.clients.ClientFor(location.APIKey, locationID), location, nil
}

// classifyRemoteError maps a gateway error onto the application taxonomy.
// Remote API rejections become credential errors where the status/body says
// so; everything else from the wire is a remote-unreachable condition.
func classifyRemoteError(err error, operation string) error {
	var apiErr *client.RemoteAPIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsInvalidCredential():
			return apperrors.NewCredentialInvalidError("remote rejected the api credential").
				WithCause(err).WithDetail("operation", operation)
		case apiErr.IsScopeDenied():
			return apperrors.NewCredentialScopeError("api credential lacks access to this location").
				WithCause(err).WithDetail("operation", operation)
		case apiErr.StatusCode == 404:
			return apperrors.NewNotFoundError("opportunity").WithCause(err)
		}
		return apperrors.NewRemoteError("remote crm returned an error").
			WithCause(err).
			WithDetail("operation", operation).
			WithDetail("status", apiErr.StatusCode)
	}
	return apperrors.NewRemoteError("remote crm unreachable").
		WithCause(err).WithDetail("operation", operation)
}
