package tezos

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Base58check prefixes of implicit (tz1..tz4) and originated (KT1) addresses.
var addressPrefixes = [][]byte{
	{6, 161, 159},
	{6, 161, 161},
	{6, 161, 164},
	{6, 161, 166},
	{2, 90, 121},
}

const (
	addressHashLen = 20
	checksumLen    = 4
)

// ValidateAddress checks the base58check encoding and prefix of a Tezos
// account address.
func ValidateAddress(address string) error {
	address = strings.TrimSpace(address)
	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("invalid tezos address %q: %w", address, err)
	}
	if len(raw) < checksumLen {
		return fmt.Errorf("invalid tezos address %q: too short", address)
	}
	decoded, sum := raw[:len(raw)-checksumLen], raw[len(raw)-checksumLen:]
	if !bytes.Equal(sum, checksum(decoded)) {
		return fmt.Errorf("invalid tezos address %q: checksum mismatch", address)
	}
	if len(decoded) != 3+addressHashLen {
		return fmt.Errorf("invalid tezos address %q: unexpected length %d", address, len(decoded))
	}
	for _, prefix := range addressPrefixes {
		if bytes.HasPrefix(decoded, prefix) {
			return nil
		}
	}
	return fmt.Errorf("invalid tezos address %q: unknown prefix", address)
}

// checksum is the first four bytes of the double SHA-256 of payload.
func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLen]
}
