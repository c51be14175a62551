package networkdefinition

import (
	"strings"

	"odyssey_gateway/internal/config"
	"odyssey_gateway/internal/domain/entity"
)

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Devnet = entity.NetworkDefinition{
		Network:      entity.Devnet,
		Name:         "Aptos Devnet",
		FullnodeURL:  "https://api.devnet.aptoslabs.com/v1",
		ExplorerName: "devnet",
	}
	Testnet = entity.NetworkDefinition{
		Network:      entity.Testnet,
		Name:         "Aptos Testnet",
		ChainID:      2,
		FullnodeURL:  "https://api.testnet.aptoslabs.com/v1",
		ExplorerName: "testnet",
	}
	Mainnet = entity.NetworkDefinition{
		Network:      entity.Mainnet,
		Name:         "Aptos Mainnet",
		ChainID:      1,
		FullnodeURL:  "https://api.mainnet.aptoslabs.com/v1",
		ExplorerName: "mainnet",
	}
	Randomnet = entity.NetworkDefinition{
		Network:      entity.Randomnet,
		Name:         "Aptos Randomnet",
		FullnodeURL:  "https://fullnode.random.aptoslabs.com/v1",
		ExplorerName: "randomnet",
	}
)

// Resolve maps a case-insensitive network name to one of the predefined networks.
// It never fails: anything that is not "testnet", "mainnet" or "random" is devnet.
func Resolve(name string) entity.NetworkDefinition {
	switch strings.ToLower(name) {
	case "testnet":
		return Testnet
	case "mainnet":
		return Mainnet
	case "random":
		return Randomnet
	default:
		return Devnet
	}
}

// NetworkDefinitionProvider resolves network names and applies configured fullnode overrides.
type NetworkDefinitionProvider struct {
	overrides map[entity.Network]string
}

// NewNetworkDefinitionProvider creates a provider from the networks section of the config.
func NewNetworkDefinitionProvider(cfg config.NetworksConfig) *NetworkDefinitionProvider {
	overrides := make(map[entity.Network]string)
	for network, url := range map[entity.Network]string{
		entity.Devnet:    cfg.Devnet,
		entity.Testnet:   cfg.Testnet,
		entity.Mainnet:   cfg.Mainnet,
		entity.Randomnet: cfg.Randomnet,
	} {
		if url = strings.TrimRight(strings.TrimSpace(url), "/"); url != "" {
			overrides[network] = url
		}
	}
	return &NetworkDefinitionProvider{overrides: overrides}
}

// Resolve returns the definition for name with any fullnode URL override applied.
func (p *NetworkDefinitionProvider) Resolve(name string) entity.NetworkDefinition {
	def := Resolve(name)
	if p == nil {
		return def
	}
	if url, ok := p.overrides[def.Network]; ok {
		def.FullnodeURL = url
	}
	return def
}

// GetAllNetworkDefinitions returns the predefined definitions with overrides applied.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	defs := []entity.NetworkDefinition{Devnet, Testnet, Mainnet, Randomnet}
	if p == nil {
		return defs
	}
	for i := range defs {
		if url, ok := p.overrides[defs[i].Network]; ok {
			defs[i].FullnodeURL = url
		}
	}
	return defs
}
