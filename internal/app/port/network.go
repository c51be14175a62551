package port

import (
	"context"
	"encoding/json"

	"odyssey_gateway/internal/domain/entity"
)

// NetworkResolver maps a configured network name to a network definition.
// Implementations must be total: unknown names resolve to a default network.
type NetworkResolver interface {
	Resolve(name string) entity.NetworkDefinition
}

// Signer is an account able to sign Aptos transactions.
type Signer interface {
	// Address returns the account address as 0x-prefixed hex.
	Address() string
	// PublicKeyHex returns the Ed25519 public key as 0x-prefixed hex.
	PublicKeyHex() string
	// Sign signs an already prefixed signing message.
	Sign(message []byte) []byte
}

// SignerLoader derives a Signer from a private key string.
type SignerLoader func(privateKey string) (Signer, error)

// FullnodeClient talks to one Aptos fullnode REST endpoint.
type FullnodeClient interface {
	// View calls a Move view function and returns its decoded return values.
	View(ctx context.Context, function string, typeArguments []string, arguments []any) ([]json.RawMessage, error)

	// SignAndSubmit builds a transaction for payload, signs it with signer and submits it.
	SignAndSubmit(ctx context.Context, signer Signer, payload entity.EntryFunctionPayload) (json.RawMessage, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// FullnodeClientProvider hands out clients per network.
type FullnodeClientProvider interface {
	GetClient(networkDefinition entity.NetworkDefinition) (FullnodeClient, error)
}
