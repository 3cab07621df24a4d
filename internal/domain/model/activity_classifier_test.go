package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyActivity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bucket   Bucket
		kind     TxKind
		expected ActivityType
	}{
		{"incoming transfer → Deposit", BucketIncoming, KindTransfer, ActivityDeposit},
		{"incoming internal → Deposit", BucketIncoming, KindInternal, ActivityDeposit},
		{"outgoing → Withdrawal", BucketOutgoing, KindTransfer, ActivityWithdrawal},
		{"fee → Other Fee", BucketFeeIncurring, KindReveal, ActivityOtherFee},
		{"reward record → Staking", BucketReward, KindReward, ActivityStaking},
		{"reward sub-field → Reward / Bonus", BucketReward, KindTransfer, ActivityReward},
		{"activation → Airdrop", BucketClose, KindActivation, ActivityAirdrop},
		{"close remainder → Deposit", BucketClose, KindTransfer, ActivityDeposit},
		{"unknown bucket → Other Fee", Bucket("unknown"), KindTransfer, ActivityOtherFee},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifyActivity(tc.bucket, tc.kind))
		})
	}
}

func TestParseActivityType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in string
		ok bool
	}{
		{"Deposit", true},
		{"Reward / Bonus", true},
		{"Other Fee", true},
		{"deposit", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			_, ok := ParseActivityType(tc.in)
			assert.Equal(t, tc.ok, ok)
		})
	}
}
