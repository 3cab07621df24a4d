package subscan

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	publicKeyLen = 32
	checksumLen  = 2
)

var ss58Prefix = []byte("SS58PRE")

// ValidateAddress checks an SS58 address against the network's single-byte
// prefix and its blake2b-512 checksum.
func ValidateAddress(address string, network byte) error {
	address = strings.TrimSpace(address)
	decoded, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("invalid ss58 address %q: %w", address, err)
	}
	if len(decoded) != 1+publicKeyLen+checksumLen {
		return fmt.Errorf("invalid ss58 address %q: decoded length %d", address, len(decoded))
	}
	if decoded[0] != network {
		return fmt.Errorf("invalid ss58 address %q: network prefix %d, want %d", address, decoded[0], network)
	}
	body := decoded[:1+publicKeyLen]
	sum := blake2b.Sum512(append(append([]byte{}, ss58Prefix...), body...))
	if !bytes.Equal(sum[:checksumLen], decoded[1+publicKeyLen:]) {
		return fmt.Errorf("invalid ss58 address %q: checksum mismatch", address)
	}
	return nil
}
