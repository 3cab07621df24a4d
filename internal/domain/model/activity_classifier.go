package model

// ActivityType is the CoinTracking transaction type written to the Type
// column.
type ActivityType string

const (
	ActivityDeposit    ActivityType = "Deposit"
	ActivityWithdrawal ActivityType = "Withdrawal"
	ActivityIncome     ActivityType = "Income"
	ActivityStaking    ActivityType = "Staking"
	ActivityReward     ActivityType = "Reward / Bonus"
	ActivityOtherFee   ActivityType = "Other Fee"
	ActivityLost       ActivityType = "Lost"
	ActivityGift       ActivityType = "Gift/Tip"
	ActivityAirdrop    ActivityType = "Airdrop"
	ActivityMining     ActivityType = "Mining"
	ActivitySpend      ActivityType = "Spend"
	ActivityTrade      ActivityType = "Trade"
)

// ActivityTypes lists every type accepted in a known-transactions file.
var ActivityTypes = []ActivityType{
	ActivityDeposit, ActivityWithdrawal, ActivityIncome, ActivityStaking,
	ActivityReward, ActivityOtherFee, ActivityLost, ActivityGift,
	ActivityAirdrop, ActivityMining, ActivitySpend, ActivityTrade,
}

// ClassifyActivity maps a statement bucket and the operation kind of the
// entry into the CoinTracking type of the exported row.
func ClassifyActivity(bucket Bucket, kind TxKind) ActivityType {
	switch bucket {
	case BucketIncoming:
		return ActivityDeposit

	case BucketOutgoing:
		return ActivityWithdrawal

	case BucketFeeIncurring:
		return ActivityOtherFee

	case BucketReward:
		if kind == KindReward {
			return ActivityStaking
		}
		return ActivityReward

	case BucketClose:
		if kind == KindActivation {
			return ActivityAirdrop
		}
		return ActivityDeposit

	default:
		return ActivityOtherFee
	}
}

// ParseActivityType accepts any of the CoinTracking type names.
func ParseActivityType(s string) (ActivityType, bool) {
	for _, t := range ActivityTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}
