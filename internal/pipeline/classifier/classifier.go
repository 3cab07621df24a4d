package classifier

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/emperorhan/chain-ledger-export/internal/metrics"
	"github.com/emperorhan/chain-ledger-export/internal/pipeline/identity"
	"github.com/shopspring/decimal"
)

// Auxiliary carries per-run inputs that are not part of the transactions.
type Auxiliary struct {
	// RewardSenders extends the chain's default reward-sender set.
	RewardSenders []string
}

// Classifier partitions a transaction list into the buckets of a Statement
// relative to one subject account.
//
// Only successful operations move value; a failed operation sent by the
// subject still costs its fee. A self-transfer moves nothing and only costs
// the fee. Within a bucket an identifier appears once: the first record wins
// and later ones are kept in Statement.Duplicates. The same identifier may
// appear in different buckets, e.g. an Ethereum normal transaction in
// Outgoing and an internal transfer of the same hash in Incoming.
type Classifier struct {
	rules  Rules
	logger *slog.Logger
}

func New(rules Rules, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		rules:  rules,
		logger: logger.With("component", "classifier", "chain", rules.Chain.String()),
	}
}

func (c *Classifier) Classify(txs []model.Transaction, subject string, aux Auxiliary) model.Statement {
	b := &builder{
		chain: c.rules.Chain,
		seen:  make(map[model.Bucket]map[string]int),
		stmt:  model.Statement{Chain: c.rules.Chain, Subject: subject},
	}

	self := c.fold(subject)
	rewardSenders := make(map[string]struct{}, len(c.rules.DefaultRewardSenders)+len(aux.RewardSenders))
	for _, s := range c.rules.DefaultRewardSenders {
		rewardSenders[c.fold(s)] = struct{}{}
	}
	for _, s := range aux.RewardSenders {
		rewardSenders[c.fold(s)] = struct{}{}
	}

	for _, tx := range txs {
		c.classifyOne(b, tx, self, rewardSenders)
	}

	stmt := b.finish()
	for _, bucket := range model.Buckets {
		metrics.ClassifierEntries.WithLabelValues(c.rules.Chain.String(), string(bucket)).Add(float64(len(stmt.Bucket(bucket))))
	}
	c.logger.Debug("classified transactions",
		"subject", subject,
		"transactions", len(txs),
		"incoming", len(stmt.Incoming),
		"outgoing", len(stmt.Outgoing),
		"fee_incurring", len(stmt.FeeIncurring),
		"reward", len(stmt.Reward),
		"close", len(stmt.Close),
		"duplicates", len(stmt.Duplicates),
	)
	return stmt
}

func (c *Classifier) classifyOne(b *builder, tx model.Transaction, self string, rewardSenders map[string]struct{}) {
	isSender := c.fold(tx.Sender) == self
	isReceiver := tx.HasReceiver() && c.fold(tx.Receiver) == self

	if isSender {
		fee := tx.Fee
		if c.rules.BurnIsFee && tx.Tezos != nil {
			fee = fee.Add(tx.Tezos.Burn)
		}
		b.add(model.BucketFeeIncurring, tx, fee)
	}

	if !tx.Success {
		return
	}

	closeTo := ""
	if p := tx.Algorand; p != nil && p.CloseTo != "" {
		closeTo = c.fold(p.CloseTo)
	}

	if c.rules.RewardSubfields && tx.Algorand != nil {
		reward := decimal.Zero
		if isSender {
			reward = reward.Add(tx.Algorand.SenderRewards)
		}
		if isReceiver {
			reward = reward.Add(tx.Algorand.ReceiverRewards)
		}
		if closeTo == self {
			reward = reward.Add(tx.Algorand.CloseRewards)
		}
		b.add(model.BucketReward, tx, reward)
	}

	if c.rules.CloseRemainder && tx.Algorand != nil && closeTo == self && !isSender {
		b.add(model.BucketClose, tx, tx.Algorand.CloseAmount)
	}

	// A close remainder sent elsewhere leaves the account whoever the
	// payment receiver is, a self-payment included.
	closeOut := decimal.Zero
	if c.rules.CloseRemainder && isSender && tx.Algorand != nil && closeTo != "" && closeTo != self {
		closeOut = tx.Algorand.CloseAmount
	}

	switch {
	case !tx.HasReceiver(), isSender && isReceiver:
		b.add(model.BucketOutgoing, tx, closeOut)
	case isReceiver && slices.Contains(c.rules.RewardKinds, tx.Kind):
		b.add(model.BucketReward, tx, tx.Amount)
	case isReceiver && slices.Contains(c.rules.CloseKinds, tx.Kind):
		b.add(model.BucketClose, tx, tx.Amount)
	case isReceiver:
		if _, ok := rewardSenders[c.fold(tx.Sender)]; ok {
			b.add(model.BucketReward, tx, tx.Amount)
		} else {
			b.add(model.BucketIncoming, tx, tx.Amount)
		}
	case isSender:
		b.add(model.BucketOutgoing, tx, tx.Amount.Add(closeOut))
	}
}

func (c *Classifier) fold(address string) string {
	trimmed := strings.TrimSpace(address)
	if c.rules.FoldCase {
		return strings.ToLower(trimmed)
	}
	return trimmed
}

type builder struct {
	chain model.Chain
	seen  map[model.Bucket]map[string]int
	stmt  model.Statement
}

// add appends a non-zero entry unless the bucket already holds the
// identifier.
func (b *builder) add(bucket model.Bucket, tx model.Transaction, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	key := identity.CanonicalTxIdentity(b.chain, tx.ID)
	entries := b.entries(bucket)

	ids, ok := b.seen[bucket]
	if !ok {
		ids = make(map[string]int)
		b.seen[bucket] = ids
	}
	if idx, dup := ids[key]; dup {
		b.stmt.Duplicates = append(b.stmt.Duplicates, model.Duplicate{
			Bucket:  bucket,
			Kept:    (*entries)[idx].Tx,
			Dropped: tx,
		})
		metrics.ClassifierDuplicates.WithLabelValues(b.chain.String(), string(bucket)).Inc()
		return
	}
	ids[key] = len(*entries)
	*entries = append(*entries, model.Entry{Tx: tx, Amount: amount})
}

func (b *builder) entries(bucket model.Bucket) *[]model.Entry {
	switch bucket {
	case model.BucketIncoming:
		return &b.stmt.Incoming
	case model.BucketOutgoing:
		return &b.stmt.Outgoing
	case model.BucketFeeIncurring:
		return &b.stmt.FeeIncurring
	case model.BucketReward:
		return &b.stmt.Reward
	default:
		return &b.stmt.Close
	}
}

func (b *builder) finish() model.Statement {
	byTx := func(x, y model.Entry) int { return model.NewestFirst(x.Tx, y.Tx) }
	for _, bucket := range model.Buckets {
		slices.SortStableFunc(*b.entries(bucket), byTx)
	}
	return b.stmt
}
