package model

import (
	"github.com/shopspring/decimal"
)

// Bucket names one accounting view of a Statement.
type Bucket string

const (
	BucketIncoming     Bucket = "incoming"
	BucketOutgoing     Bucket = "outgoing"
	BucketFeeIncurring Bucket = "fee_incurring"
	BucketReward       Bucket = "reward"
	BucketClose        Bucket = "close"
)

// Entry is one transaction's contribution to a bucket. Amount is the value the
// transaction adds to that bucket relative to the subject account, which is
// not always Tx.Amount (fees, rewards and close remainders are sub-fields).
type Entry struct {
	Tx     Transaction
	Amount decimal.Decimal
}

// Duplicate records a record suppressed by identifier dedup during
// classification, together with the record that was kept.
type Duplicate struct {
	Bucket  Bucket
	Kept    Transaction
	Dropped Transaction
}

// Statement partitions a transaction list into accounting buckets relative to
// one subject account. Every bucket is ordered newest-first and holds at most
// one entry per transaction identifier. A statement is built once by the
// classifier and must not be modified afterwards.
type Statement struct {
	Chain   Chain
	Subject string

	Incoming     []Entry
	Outgoing     []Entry
	FeeIncurring []Entry
	Reward       []Entry
	Close        []Entry

	Duplicates []Duplicate
}

// Bucket returns the entries of the named bucket.
func (s Statement) Bucket(b Bucket) []Entry {
	switch b {
	case BucketIncoming:
		return s.Incoming
	case BucketOutgoing:
		return s.Outgoing
	case BucketFeeIncurring:
		return s.FeeIncurring
	case BucketReward:
		return s.Reward
	case BucketClose:
		return s.Close
	default:
		return nil
	}
}

// Buckets lists bucket names in export order.
var Buckets = []Bucket{BucketIncoming, BucketReward, BucketClose, BucketOutgoing, BucketFeeIncurring}

// IDs returns the identifiers of the entries, preserving order.
func IDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.Tx.ID
	}
	return ids
}
