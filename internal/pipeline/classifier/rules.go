package classifier

import (
	"fmt"

	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
)

// HederaStakingRewardAccount pays Hedera staking rewards.
const HederaStakingRewardAccount = "0.0.800"

// Rules is the per-chain classification table. Every chain shares one
// classification procedure; only these switches differ.
type Rules struct {
	Chain model.Chain

	// FoldCase compares addresses case-insensitively (hex addresses).
	FoldCase bool

	// RewardKinds credit the Reward bucket instead of Incoming.
	RewardKinds []model.TxKind

	// CloseKinds credit the Close bucket instead of Incoming.
	CloseKinds []model.TxKind

	// BurnIsFee adds the Tezos storage/allocation burn to the fee.
	BurnIsFee bool

	// RewardSubfields credits Algorand sender/receiver/close rewards.
	RewardSubfields bool

	// CloseRemainder routes Algorand close remainders: into Close for the
	// close receiver, into Outgoing for the closing sender.
	CloseRemainder bool

	// DefaultRewardSenders are accounts whose transfers to the subject are
	// rewards. Callers may extend the set per run (Tezos bakers).
	DefaultRewardSenders []string
}

// RulesFor returns the rule table of a chain.
func RulesFor(c model.Chain) (Rules, error) {
	switch c {
	case model.ChainEthereum:
		return Rules{Chain: c, FoldCase: true}, nil
	case model.ChainTezos:
		return Rules{
			Chain:      c,
			BurnIsFee:  true,
			CloseKinds: []model.TxKind{model.KindActivation},
		}, nil
	case model.ChainAlgorand:
		return Rules{
			Chain:           c,
			RewardSubfields: true,
			CloseRemainder:  true,
		}, nil
	case model.ChainPolkadot, model.ChainKusama:
		return Rules{
			Chain:       c,
			RewardKinds: []model.TxKind{model.KindReward},
		}, nil
	case model.ChainHedera:
		return Rules{
			Chain:                c,
			DefaultRewardSenders: []string{HederaStakingRewardAccount},
		}, nil
	default:
		return Rules{}, fmt.Errorf("no classification rules for chain %q", c)
	}
}
