package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for configuration loading. These allow errors.Is from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config holds the overall configuration for the gateway.
// It is loaded once at startup and must not be mutated afterwards.
type Config struct {
	Network         string           `yaml:"network" json:"network"`
	Collection      CollectionConfig `yaml:"collection" json:"collection"`
	ResourceAccount string           `yaml:"resource_account" json:"resource_account"`
	Storage         StorageConfig    `yaml:"storage" json:"storage"`
	PrivateKey      string           `yaml:"private_key" json:"private_key"`
	RandomTrait     bool             `yaml:"random_trait" json:"random_trait"`
	RevealRequired  bool             `yaml:"reveal_required" json:"reveal_required"`
	BaseTokenURI    string           `yaml:"base_token_uri" json:"base_token_uri"`

	Server    ServerConfig    `yaml:"server" json:"server"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	RpcClient RpcClientConfig `yaml:"rpc_client" json:"rpc_client"`
	Networks  NetworksConfig  `yaml:"networks" json:"networks"`
	Odyssey   OdysseyConfig   `yaml:"odyssey" json:"odyssey"`
}

// CollectionConfig describes the NFT collection being minted.
type CollectionConfig struct {
	CollectionName string `yaml:"collection_name" json:"collection_name"`
	Description    string `yaml:"description" json:"description"`
	AssetDir       string `yaml:"asset_dir" json:"asset_dir"`
}

// StorageConfig holds decentralized storage settings.
type StorageConfig struct {
	Arweave ArweaveConfig `yaml:"arweave" json:"arweave"`
}

// ArweaveConfig holds the wallet key file and the node used for uploads.
type ArweaveConfig struct {
	KeyFilePath string `yaml:"key_file_path" json:"key_file_path"`
	GatewayURL  string `yaml:"gateway_url" json:"gateway_url"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  int    `yaml:"idle_timeout" json:"idle_timeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file" json:"file"`
}

// RpcClientConfig holds configuration for fullnode clients.
type RpcClientConfig struct {
	TimeoutMs            int64  `yaml:"timeout_ms" json:"timeout_ms"`
	RateLimit            int    `yaml:"rate_limit" json:"rate_limit"`
	BurstLimit           int    `yaml:"burst_limit" json:"burst_limit"`
	GasPriceCacheSeconds int    `yaml:"gas_price_cache_seconds" json:"gas_price_cache_seconds"`
	MaxGasAmount         uint64 `yaml:"max_gas_amount" json:"max_gas_amount"`
	ExpirationSeconds    int64  `yaml:"expiration_seconds" json:"expiration_seconds"`
	MaxConnsPerHost      int    `yaml:"max_conns_per_host" json:"max_conns_per_host"`
}

// NetworksConfig overrides the fullnode URL of the predefined networks.
type NetworksConfig struct {
	Devnet    string `yaml:"devnet" json:"devnet"`
	Testnet   string `yaml:"testnet" json:"testnet"`
	Mainnet   string `yaml:"mainnet" json:"mainnet"`
	Randomnet string `yaml:"randomnet" json:"randomnet"`
}

// OdysseyConfig locates the on-chain odyssey module.
type OdysseyConfig struct {
	ModuleAddress string `yaml:"module_address" json:"module_address"`
	ModuleName    string `yaml:"module_name" json:"module_name"`
	MaxMintPerTxn int    `yaml:"max_mint_per_txn" json:"max_mint_per_txn"`
}

// DelayedReveal reports whether the collection reveals artwork later: a reveal
// is required and no base token URI was preset.
func (c *Config) DelayedReveal() bool {
	return c.RevealRequired && c.BaseTokenURI == ""
}

// LoadConfig loads configuration from a YAML or JSON file, applies defaults and validates it.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("%w: failed to read config file %s: %w", ErrLoadConfig, path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		logrus.Errorf("Failed to load config data from %s: %v", path, err)
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return cfg, nil
}

// Parse decodes raw config bytes, applies defaults and validates the result.
// A document starting with '{' is decoded as JSON, anything else as YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config data: %w", ErrLoadConfig, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func unmarshal(data []byte, cfg *Config) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(trimmed, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) applyDefaults() {
	c.BaseTokenURI = strings.TrimSpace(c.BaseTokenURI)

	if c.Server.Port == "" {
		c.Server.Port = ":3001"
	} else if !strings.Contains(c.Server.Port, ":") {
		c.Server.Port = ":" + c.Server.Port
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 120 // uploads to arweave can take a while
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.RpcClient.TimeoutMs == 0 {
		c.RpcClient.TimeoutMs = 30000
		logrus.Debugf("rpc_client.timeout_ms not set, defaulting to %d ms", c.RpcClient.TimeoutMs)
	}
	if c.RpcClient.RateLimit == 0 {
		c.RpcClient.RateLimit = 20
	}
	if c.RpcClient.BurstLimit == 0 {
		c.RpcClient.BurstLimit = 10
	}
	if c.RpcClient.GasPriceCacheSeconds == 0 {
		c.RpcClient.GasPriceCacheSeconds = 60
	}
	if c.RpcClient.MaxGasAmount == 0 {
		c.RpcClient.MaxGasAmount = 200000
	}
	if c.RpcClient.ExpirationSeconds == 0 {
		c.RpcClient.ExpirationSeconds = 600
	}
	if c.RpcClient.MaxConnsPerHost == 0 {
		c.RpcClient.MaxConnsPerHost = 64
	}

	if c.Storage.Arweave.GatewayURL == "" {
		c.Storage.Arweave.GatewayURL = "https://arweave.net"
	}
	c.Storage.Arweave.GatewayURL = strings.TrimRight(c.Storage.Arweave.GatewayURL, "/")

	if c.Odyssey.ModuleAddress == "" {
		c.Odyssey.ModuleAddress = c.ResourceAccount
		if c.ResourceAccount != "" {
			logrus.Infof("odyssey.module_address not set, defaulting to resource_account %s", c.ResourceAccount)
		}
	}
	if c.Odyssey.ModuleName == "" {
		c.Odyssey.ModuleName = "odyssey"
	}
}

// Validate checks that every field needed by a reachable code path is present.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.ResourceAccount) == "" {
		problems = append(problems, "resource_account is required")
	}
	if strings.TrimSpace(c.Collection.AssetDir) == "" {
		problems = append(problems, "collection.asset_dir is required")
	}
	if strings.TrimSpace(c.Storage.Arweave.KeyFilePath) == "" {
		problems = append(problems, "storage.arweave.key_file_path is required")
	}
	// The metadata update path signs with the creator key unless the reveal is delayed.
	if !c.DelayedReveal() && strings.TrimSpace(c.PrivateKey) == "" {
		problems = append(problems, "private_key is required when base_token_uri is set or reveal_required is false")
	}
	if c.Odyssey.MaxMintPerTxn < 0 {
		problems = append(problems, "odyssey.max_mint_per_txn must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	if c.Network == "" {
		logrus.Warn("network is not set, requests will go to devnet")
	}
	return nil
}
