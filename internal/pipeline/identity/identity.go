package identity

import (
	"strings"

	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
)

// CanonicalTxIdentity normalises a transaction identifier into its canonical
// form so that different representations of the same hash (e.g. mixed-case
// hex, 0x prefix vs bare) compare as equal. It is the dedup key used by the
// fetcher and the classifier.
func CanonicalTxIdentity(chainID model.Chain, id string) string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return ""
	}
	if !IsEVMChain(chainID) {
		return trimmed
	}
	return canonicalHex(trimmed)
}

// CanonicalAddressIdentity normalises an account identifier. EVM addresses
// are case-insensitive and are lowercased with a 0x prefix; every other chain
// compares addresses verbatim after trimming.
func CanonicalAddressIdentity(chainID model.Chain, address string) string {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return ""
	}
	if !IsEVMChain(chainID) {
		return trimmed
	}
	return canonicalHex(trimmed)
}

func canonicalHex(trimmed string) string {
	withoutPrefix := strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if withoutPrefix == "" {
		return trimmed
	}
	if IsHexString(withoutPrefix) {
		return "0x" + strings.ToLower(withoutPrefix)
	}
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		return "0x" + strings.ToLower(withoutPrefix)
	}
	return trimmed
}

// IsEVMChain returns true for EVM-compatible chains.
func IsEVMChain(chainID model.Chain) bool {
	return chainID == model.ChainEthereum
}

// IsHexString reports whether v consists solely of hexadecimal characters.
func IsHexString(v string) bool {
	for _, ch := range v {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}
