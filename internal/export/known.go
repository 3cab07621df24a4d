package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/shopspring/decimal"
)

// KnownColumns is the header of a known-transactions file. Column order is
// free; names are matched case-insensitively.
var KnownColumns = []string{
	"TxID", "Type", "BuyAmount", "BuyCurrency", "SellAmount", "SellCurrency",
	"Fee", "FeeCurrency", "Exchange", "Group", "Comment",
}

// InputError reports a malformed known-transactions file. Line is 1-based
// and counts the header.
type InputError struct {
	Line   int
	Column string
	Err    error
}

func (e *InputError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("known transactions line %d, column %s: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("known transactions line %d: %v", e.Line, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// LoadKnownTransactions parses manually authored corrections. Empty cells
// leave the generated value untouched.
func LoadKnownTransactions(r io.Reader) ([]model.Patch, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, csvInputError(err)
	}
	idx, err := headerIndex(header)
	if err != nil {
		return nil, &InputError{Line: 1, Err: err}
	}
	cr.FieldsPerRecord = len(header)

	var patches []model.Patch
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvInputError(err)
		}
		line, _ := cr.FieldPos(0)
		patch, err := parsePatch(record, idx, line)
		if err != nil {
			return nil, err
		}
		patches = append(patches, patch)
	}
	return patches, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		idx[name] = i
	}
	for _, c := range KnownColumns {
		if _, ok := idx[strings.ToLower(c)]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}
	if len(idx) != len(KnownColumns) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(KnownColumns), len(header))
	}
	return idx, nil
}

func csvInputError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &InputError{Line: pe.Line, Err: pe.Err}
	}
	return &InputError{Err: err}
}

func parsePatch(record []string, idx map[string]int, line int) (model.Patch, error) {
	cell := func(col string) string {
		return strings.TrimSpace(record[idx[strings.ToLower(col)]])
	}

	p := model.Patch{TxID: cell("TxID")}
	if p.TxID == "" {
		return model.Patch{}, &InputError{Line: line, Column: "TxID", Err: errors.New("empty transaction id")}
	}

	if v := cell("Type"); v != "" {
		t, ok := model.ParseActivityType(v)
		if !ok {
			return model.Patch{}, &InputError{Line: line, Column: "Type", Err: fmt.Errorf("unknown type %q", v)}
		}
		p.Type = &t
	}

	for _, f := range []struct {
		col string
		dst **decimal.Decimal
	}{
		{"BuyAmount", &p.BuyAmount},
		{"SellAmount", &p.SellAmount},
		{"Fee", &p.Fee},
	} {
		v := cell(f.col)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return model.Patch{}, &InputError{Line: line, Column: f.col, Err: fmt.Errorf("malformed amount %q", v)}
		}
		if d.IsNegative() {
			return model.Patch{}, &InputError{Line: line, Column: f.col, Err: fmt.Errorf("negative amount %q", v)}
		}
		*f.dst = &d
	}

	p.BuyCurrency = optional(cell("BuyCurrency"))
	p.SellCurrency = optional(cell("SellCurrency"))
	p.FeeCurrency = optional(cell("FeeCurrency"))
	p.Exchange = optional(cell("Exchange"))
	p.Group = optional(cell("Group"))
	p.Comment = optional(cell("Comment"))
	return p, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
