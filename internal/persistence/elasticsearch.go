package persistence

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/config"
)

// NewElasticsearch builds a search client, or returns nil when no addresses are configured.
// transport may be nil to use the default HTTP transport.
func NewElasticsearch(cfg config.SearchConfig, transport http.RoundTripper, logger *zap.Logger) (*elasticsearch.Client, error) {
	if len(cfg.Addresses) == 0 {
		logger.Warn("ELASTICSEARCH_ADDRESSES not provided; thread search falls back to the store")
		return nil, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Transport: transport,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("elasticsearch client configured", zap.Strings("addresses", cfg.Addresses))
	return client, nil
}
