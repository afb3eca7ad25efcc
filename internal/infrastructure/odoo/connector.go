package odoo

import (
	"context"
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ integration.Connector = (*Connector)(nil)

// Connector opens a fresh authenticated Client per call
type Connector struct {
	opts []Option
}

// NewConnector creates a connector applying opts to every client
func NewConnector(opts ...Option) *Connector {
	return &Connector{opts: opts}
}

// NewConnectorFromConfig builds a connector from the remote settings
func NewConnectorFromConfig(cfg config.RemoteConfig, logger *zap.Logger) *Connector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return NewConnector(
		WithTimeout(timeout),
		WithMaxResponseSize(cfg.MaxResponseSize),
		WithLogger(logger.Named("odoo")),
	)
}

// Connect implements integration.Connector
func (c *Connector) Connect(ctx context.Context, connectionURL string) (integration.RemoteClient, error) {
	params, err := ParseURL(connectionURL)
	if err != nil {
		return nil, err
	}
	client := NewClient(params, c.opts...)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
