package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DecodeHex decodes hex with or without the 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// NormalizeAddress lowercases an account address and makes sure it carries the 0x prefix.
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if !strings.HasPrefix(addr, "0x") {
		addr = "0x" + addr
	}
	return addr
}
