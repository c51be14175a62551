package port

import (
	"context"
	"encoding/json"

	"odyssey_gateway/internal/domain/entity"
)

// NetworkStateReader reads collection-level state of an odyssey.
type NetworkStateReader interface {
	// GetOdyssey returns the odyssey resource, or nil when the account holds none.
	GetOdyssey(ctx context.Context, network entity.NetworkDefinition, resourceAccount string) (json.RawMessage, error)
	// GetStage returns the current mint stage, or nil when there is none.
	GetStage(ctx context.Context, network entity.NetworkDefinition, resourceAccount string) (json.RawMessage, error)
}

// BalanceReader reads per-address mint allowances.
type BalanceReader interface {
	GetAllowListBalance(ctx context.Context, network entity.NetworkDefinition, resourceAccount, address string) (uint64, error)
	GetPublicListBalance(ctx context.Context, network entity.NetworkDefinition, resourceAccount, address string) (uint64, error)
}

// PayloadBuilder constructs unsigned mint payloads for a client wallet to sign.
type PayloadBuilder interface {
	GetMintToPayloads(ctx context.Context, address, resourceAccount, mintQty string, network entity.NetworkDefinition, tokenURI string) ([]entity.EntryFunctionPayload, error)
}

// MetadataUpdater reveals a token by uploading its artwork and submitting the metadata update.
type MetadataUpdater interface {
	// UpdateMetadataImage returns the submitted transaction, or nil when nothing was submitted.
	UpdateMetadataImage(ctx context.Context, network entity.NetworkDefinition, resourceAccount string, creator Signer, req entity.MetadataUpdateRequest) (json.RawMessage, error)
}

// AssetUploader uploads collection artwork to decentralized storage.
type AssetUploader interface {
	// UploadNFT uploads asset index from assetDir and returns the resulting token URI.
	UploadNFT(ctx context.Context, index int, assetDir, keyFilePath string) (string, error)
}

// OdysseyClient is the full capability set the gateway delegates to.
type OdysseyClient interface {
	NetworkStateReader
	BalanceReader
	PayloadBuilder
	MetadataUpdater
	AssetUploader
}

// OdysseyService defines the operations exposed over HTTP.
type OdysseyService interface {
	GetOdyssey(ctx context.Context) (json.RawMessage, error)
	GetStage(ctx context.Context) (json.RawMessage, error)
	GetAllowListBalance(ctx context.Context, address string) (uint64, error)
	GetPublicListBalance(ctx context.Context, address string) (uint64, error)
	GetMintPayloads(ctx context.Context, address, mintQty string) ([]entity.EntryFunctionPayload, error)
	UpdateMetadataImage(ctx context.Context, tokenNo, tokenAddress string) (json.RawMessage, error)
	NetworkName() string
}
