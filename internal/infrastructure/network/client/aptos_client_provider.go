package client

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"odyssey_gateway/internal/app/port"
	"odyssey_gateway/internal/config"
	"odyssey_gateway/internal/domain/entity"
)

// aptosClientProvider implements the port.FullnodeClientProvider interface.
type aptosClientProvider struct {
	clients map[string]port.FullnodeClient
	mu      sync.Mutex
	opts    Options
	logger  *zap.Logger
}

// OptionsFromConfig converts the rpc_client section into client options.
func OptionsFromConfig(cfg config.RpcClientConfig) Options {
	return Options{
		Timeout:           time.Duration(cfg.TimeoutMs) * time.Millisecond,
		RateLimit:         cfg.RateLimit,
		BurstLimit:        cfg.BurstLimit,
		GasPriceCacheTTL:  time.Duration(cfg.GasPriceCacheSeconds) * time.Second,
		MaxGasAmount:      cfg.MaxGasAmount,
		ExpirationSeconds: cfg.ExpirationSeconds,
		MaxConnsPerHost:   cfg.MaxConnsPerHost,
	}
}

// NewAptosClientProvider creates a new AptosClientProvider.
func NewAptosClientProvider(cfg config.RpcClientConfig, logger *zap.Logger) port.FullnodeClientProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &aptosClientProvider{
		clients: make(map[string]port.FullnodeClient),
		opts:    OptionsFromConfig(cfg),
		logger:  logger,
	}
}

// GetClient retrieves a fullnode client for the given network definition.
// It caches clients so rate limits and the gas price cache are shared per endpoint.
func (p *aptosClientProvider) GetClient(netDef entity.NetworkDefinition) (port.FullnodeClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clientKey := string(netDef.Network) + "|" + netDef.FullnodeURL
	if client, exists := p.clients[clientKey]; exists {
		return client, nil
	}

	p.logger.Info("Creating new Aptos client", zap.String("network", netDef.Name), zap.String("fullnode", netDef.FullnodeURL))
	newClient := NewAptosClient(netDef, p.opts, p.logger)
	p.clients[clientKey] = newClient
	return newClient, nil
}
