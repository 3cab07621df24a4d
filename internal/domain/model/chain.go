package model

import "fmt"

type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainTezos    Chain = "tezos"
	ChainAlgorand Chain = "algorand"
	ChainPolkadot Chain = "polkadot"
	ChainKusama   Chain = "kusama"
	ChainHedera   Chain = "hedera"
)

// AllChains lists every chain an export can be produced for.
var AllChains = []Chain{
	ChainEthereum,
	ChainTezos,
	ChainAlgorand,
	ChainPolkadot,
	ChainKusama,
	ChainHedera,
}

func (c Chain) String() string {
	return string(c)
}

// Currency returns the ticker of the chain's native asset as CoinTracking
// expects it in the currency columns.
func (c Chain) Currency() string {
	switch c {
	case ChainEthereum:
		return "ETH"
	case ChainTezos:
		return "XTZ"
	case ChainAlgorand:
		return "ALGO"
	case ChainPolkadot:
		return "DOT"
	case ChainKusama:
		return "KSM"
	case ChainHedera:
		return "HBAR"
	default:
		return ""
	}
}

// DisplayName is used as the Exchange column of exported rows.
func (c Chain) DisplayName() string {
	switch c {
	case ChainEthereum:
		return "Ethereum"
	case ChainTezos:
		return "Tezos"
	case ChainAlgorand:
		return "Algorand"
	case ChainPolkadot:
		return "Polkadot"
	case ChainKusama:
		return "Kusama"
	case ChainHedera:
		return "Hedera Hashgraph"
	default:
		return string(c)
	}
}

func ParseChain(s string) (Chain, error) {
	for _, c := range AllChains {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported chain %q", s)
}

// TxKind distinguishes the operation kinds that chains report in their
// transaction histories.
type TxKind string

const (
	KindTransfer    TxKind = "transfer"
	KindInternal    TxKind = "internal"
	KindReward      TxKind = "reward"
	KindActivation  TxKind = "activation"
	KindReveal      TxKind = "reveal"
	KindDelegation  TxKind = "delegation"
	KindOrigination TxKind = "origination"
)

func (k TxKind) String() string {
	return string(k)
}
