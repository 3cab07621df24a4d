package chain

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DecodeError reports a raw field that could not be decoded. Value carries the
// offending raw literal so the failure can be diagnosed without re-running.
type DecodeError struct {
	Field string
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("decode %s %q", e.Field, e.Value)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ParseBaseUnits converts an integer amount of base units (wei, mutez,
// microalgos, plancks, tinybars) into the display unit by shifting it exp
// decimal places. Accepts base-10 or 0x-prefixed hexadecimal literals.
// Negative values are rejected.
func ParseBaseUnits(field, value string, exp int32) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, &DecodeError{Field: field, Value: value, Err: fmt.Errorf("empty value")}
	}

	n := new(big.Int)
	var ok bool
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		_, ok = n.SetString(trimmed[2:], 16)
	} else {
		_, ok = n.SetString(trimmed, 10)
	}
	if !ok {
		return decimal.Zero, &DecodeError{Field: field, Value: value, Err: fmt.Errorf("not an integer")}
	}
	if n.Sign() < 0 {
		return decimal.Zero, &DecodeError{Field: field, Value: value, Err: fmt.Errorf("negative amount")}
	}
	return decimal.NewFromBigInt(n, -exp), nil
}

// ParseDecimal parses a non-negative decimal literal already expressed in the
// display unit.
func ParseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, &DecodeError{Field: field, Value: value, Err: err}
	}
	if d.IsNegative() {
		return decimal.Zero, &DecodeError{Field: field, Value: value, Err: fmt.Errorf("negative amount")}
	}
	return d, nil
}

// ParseInt parses a base-10 or 0x-prefixed integer field such as a block
// number or a unix timestamp.
func ParseInt(field, value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	n := new(big.Int)
	var ok bool
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		_, ok = n.SetString(trimmed[2:], 16)
	} else {
		_, ok = n.SetString(trimmed, 10)
	}
	if !ok || !n.IsInt64() {
		return 0, &DecodeError{Field: field, Value: value, Err: fmt.Errorf("not an int64")}
	}
	return n.Int64(), nil
}

// ParseUnixSeconds parses a unix-seconds timestamp field.
func ParseUnixSeconds(field, value string) (time.Time, error) {
	secs, err := ParseInt(field, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0).UTC(), nil
}
