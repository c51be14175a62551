package entity

// Network identifies one of the fixed Aptos network targets the gateway can talk to.
type Network string

const (
	Devnet    Network = "devnet"
	Testnet   Network = "testnet"
	Mainnet   Network = "mainnet"
	Randomnet Network = "randomnet"
)

// NetworkDefinition holds the connection details for a specific Aptos network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDefinition struct {
	Network      Network `json:"network" yaml:"network"`
	Name         string  `json:"name" yaml:"name"`
	ChainID      uint8   `json:"chainId" yaml:"chainId"` // 0 when the chain id is not fixed (devnet, randomnet are reset periodically)
	FullnodeURL  string  `json:"fullnodeUrl" yaml:"fullnodeUrl"`
	ExplorerName string  `json:"explorerName,omitempty" yaml:"explorerName,omitempty"`
}
