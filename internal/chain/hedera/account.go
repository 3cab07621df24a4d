package hedera

import (
	"fmt"
	"strconv"
	"strings"
)

// FeeCollectorAccount receives the network share of every transaction fee.
const FeeCollectorAccount = "0.0.98"

// ValidateAccountID checks the shard.realm.num form of a Hedera account.
func ValidateAccountID(id string) error {
	parts := strings.Split(strings.TrimSpace(id), ".")
	if len(parts) != 3 {
		return fmt.Errorf("invalid hedera account %q: want shard.realm.num", id)
	}
	for _, p := range parts {
		if _, err := strconv.ParseUint(p, 10, 64); err != nil {
			return fmt.Errorf("invalid hedera account %q: %w", id, err)
		}
	}
	return nil
}
