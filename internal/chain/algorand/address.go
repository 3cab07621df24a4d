package algorand

import (
	"bytes"
	"crypto/sha512"
	"encoding/base32"
	"fmt"
	"strings"
)

const (
	addressLen      = 58
	publicKeyLen    = 32
	checksumLen     = 4
	decodedAddrSize = publicKeyLen + checksumLen
)

var addressEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ValidateAddress checks length, base32 alphabet and the SHA-512/256
// checksum of an Algorand address.
func ValidateAddress(address string) error {
	address = strings.TrimSpace(address)
	if len(address) != addressLen {
		return fmt.Errorf("invalid algorand address %q: length %d", address, len(address))
	}
	decoded, err := addressEncoding.DecodeString(address)
	if err != nil {
		return fmt.Errorf("invalid algorand address %q: %w", address, err)
	}
	if len(decoded) != decodedAddrSize {
		return fmt.Errorf("invalid algorand address %q: decoded length %d", address, len(decoded))
	}
	sum := sha512.Sum512_256(decoded[:publicKeyLen])
	if !bytes.Equal(sum[len(sum)-checksumLen:], decoded[publicKeyLen:]) {
		return fmt.Errorf("invalid algorand address %q: checksum mismatch", address)
	}
	return nil
}
