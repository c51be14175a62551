// Package signer derives Aptos accounts from configured private keys.
package signer

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"odyssey_gateway/internal/app/port"
	"odyssey_gateway/internal/pkg/utils"
)

// ErrInvalidPrivateKey is returned when the configured key cannot be decoded as an Ed25519 seed.
var ErrInvalidPrivateKey = errors.New("invalid ed25519 private key")

// aip80Prefix is the optional prefix wallets put in front of exported Ed25519 keys.
const aip80Prefix = "ed25519-priv-"

// ed25519Scheme is the authentication key scheme byte for single Ed25519 keys.
const ed25519Scheme byte = 0x00

// Account is a legacy single-key Ed25519 account. Its address equals its authentication key.
type Account struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	address    string
}

var _ port.Signer = (*Account)(nil)

// FromPrivateKey parses a 32-byte Ed25519 seed given as hex (0x prefix and AIP-80 prefix optional).
func FromPrivateKey(privateKey string) (*Account, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(privateKey), aip80Prefix)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidPrivateKey)
	}
	seed, err := utils.DecodeHex(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPrivateKey, ed25519.SeedSize, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Account{
		privateKey: priv,
		publicKey:  pub,
		address:    AuthenticationKey(pub),
	}, nil
}

// Load adapts FromPrivateKey to port.SignerLoader.
func Load(privateKey string) (port.Signer, error) {
	acc, err := FromPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// AuthenticationKey returns sha3-256(pub || scheme) as 0x-prefixed hex.
func AuthenticationKey(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, len(pub)+1)
	buf = append(buf, pub...)
	buf = append(buf, ed25519Scheme)
	sum := sha3.Sum256(buf)
	return hexutil.Encode(sum[:])
}

// Address returns the account address.
func (a *Account) Address() string {
	return a.address
}

// PublicKeyHex returns the public key as 0x-prefixed hex.
func (a *Account) PublicKeyHex() string {
	return hexutil.Encode(a.publicKey)
}

// Sign signs message with the account key.
func (a *Account) Sign(message []byte) []byte {
	return ed25519.Sign(a.privateKey, message)
}
