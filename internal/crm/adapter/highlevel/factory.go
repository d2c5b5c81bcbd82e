package highlevel

import (
	"net/http"
	"time"

	"crm-mirror/internal/crm/domain/client"
	"crm-mirror/internal/shared/logger"
)

// ClientFactory builds per-tenant gateway clients sharing one HTTP transport.
type ClientFactory struct {
	httpClient *http.Client
	baseURL    string
	version    string
	log        logger.Logger
}

// NewClientFactory creates a factory for the given API host. An empty baseURL
// or version falls back to the public HighLevel defaults.
func NewClientFactory(baseURL, version string, timeout time.Duration, log logger.Logger) *ClientFactory {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClientFactory{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		version:    version,
		log:        log,
	}
}

// ClientFor returns a client bound to one tenant credential and location.
func (f *ClientFactory) ClientFor(apiKey, locationID string) client.CRMClient {
	return NewClient(f.httpClient, f.baseURL, f.version, apiKey, locationID, f.log)
}

var _ client.Factory = (*ClientFactory)(nil)
