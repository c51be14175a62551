// Package arweave uploads collection assets to the Arweave permaweb.
package arweave

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	"odyssey_gateway/internal/pkg/utils"
)

// ErrInvalidKeyFile is returned for key files that are not RSA JWKs.
var ErrInvalidKeyFile = errors.New("invalid arweave key file")

var b64 = base64.RawURLEncoding

// pssSaltLength matches the salt length used by the reference arweave signers.
const pssSaltLength = 32

type jwk struct {
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
	D   string `json:"d"`
	P   string `json:"p"`
	Q   string `json:"q"`
}

// Wallet is an Arweave RSA wallet loaded from a JWK key file.
type Wallet struct {
	key     *rsa.PrivateKey
	owner   []byte
	address string
}

// LoadWallet reads and parses the JWK at path.
func LoadWallet(path string) (*Wallet, error) {
	var k jwk
	if err := utils.LoadJSONFile(path, &k); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyFile, err)
	}
	return walletFromJWK(k)
}

func walletFromJWK(k jwk) (*Wallet, error) {
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("%w: unsupported key type %q", ErrInvalidKeyFile, k.Kty)
	}

	n, err := decodeInt("n", k.N)
	if err != nil {
		return nil, err
	}
	e, err := decodeInt("e", k.E)
	if err != nil {
		return nil, err
	}
	d, err := decodeInt("d", k.D)
	if err != nil {
		return nil, err
	}
	p, err := decodeInt("p", k.P)
	if err != nil {
		return nil, err
	}
	q, err := decodeInt("q", k.Q)
	if err != nil {
		return nil, err
	}
	if !e.IsInt64() {
		return nil, fmt.Errorf("%w: public exponent too large", ErrInvalidKeyFile)
	}

	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: n, E: int(e.Int64())},
		D:         d,
		Primes:    []*big.Int{p, q},
	}
	key.Precompute()
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeyFile, err)
	}

	owner := n.Bytes()
	sum := sha256.Sum256(owner)
	return &Wallet{key: key, owner: owner, address: b64.EncodeToString(sum[:])}, nil
}

func decodeInt(field, value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidKeyFile, field)
	}
	raw, err := b64.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: field %s: %w", ErrInvalidKeyFile, field, err)
	}
	return new(big.Int).SetBytes(raw), nil
}

// Address returns the wallet address: base64url(sha256(owner)).
func (w *Wallet) Address() string {
	return w.address
}

// Owner returns the public modulus as base64url.
func (w *Wallet) Owner() string {
	return b64.EncodeToString(w.owner)
}

// Sign returns the RSA-PSS/SHA-256 signature of data.
func (w *Wallet) Sign(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPSS(rand.Reader, w.key, crypto.SHA256, digest[:], &rsa.PSSOptions{SaltLength: pssSaltLength})
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	return sig, nil
}

// Verify checks an RSA-PSS/SHA-256 signature produced by Sign.
func (w *Wallet) Verify(data, sig []byte) error {
	digest := sha256.Sum256(data)
	return rsa.VerifyPSS(&w.key.PublicKey, crypto.SHA256, digest[:], sig, &rsa.PSSOptions{SaltLength: pssSaltLength})
}
