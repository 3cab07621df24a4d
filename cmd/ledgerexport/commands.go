package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/spf13/cobra"
)

// exportOptions are the flags shared by every export subcommand.
type exportOptions struct {
	startDate     string
	startBlock    int64
	knownPath     string
	output        string
	rewardSenders []string
	pageSize      int
	reconcile     bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerexport",
		Short:         "Export blockchain transaction history as CoinTracking CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	for _, ch := range model.AllChains {
		root.AddCommand(newExportCmd(ch, stdout, stderr))
	}
	return root
}

func newExportCmd(ch model.Chain, stdout, stderr io.Writer) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <%s>", ch, accountArgName(ch)),
		Short: fmt.Sprintf("Export the %s history of one %s", ch.DisplayName(), accountArgName(ch)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), ch, strings.TrimSpace(args[0]), opts, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.startDate, "start-date", "", "only export transactions on or after this date (YYYY-MM-DD, UTC)")
	f.StringVar(&opts.knownPath, "known-transactions", "", "CSV of manual corrections keyed by transaction id")
	f.StringVarP(&opts.output, "output", "o", "", "output CSV path (default <chain>-<account>.csv)")
	f.StringSliceVar(&opts.rewardSenders, "reward-sender", nil, "account whose payments to the subject are rewards (repeatable)")
	f.IntVar(&opts.pageSize, "page-size", 0, "records per explorer page (default depends on the chain)")
	f.BoolVar(&opts.reconcile, "reconcile", false, "compare the derived balance with the explorer balance (full history only)")
	if ch == model.ChainEthereum {
		f.Int64Var(&opts.startBlock, "start-block", 0, "only export transactions at or after this block")
	}
	return cmd
}

func accountArgName(ch model.Chain) string {
	if ch == model.ChainHedera {
		return "account-id"
	}
	return "address"
}

// cutoff turns the date and block flags into a model.Cutoff.
func (o exportOptions) cutoff() (model.Cutoff, error) {
	var c model.Cutoff
	if o.startDate != "" {
		t, err := time.ParseInLocation(time.DateOnly, o.startDate, time.UTC)
		if err != nil {
			return model.Cutoff{}, fmt.Errorf("--start-date %q: expected YYYY-MM-DD", o.startDate)
		}
		c.Time = t
	}
	if o.startBlock < 0 {
		return model.Cutoff{}, fmt.Errorf("--start-block must not be negative")
	}
	c.Block = o.startBlock
	return c, nil
}

func (o exportOptions) outputPath(ch model.Chain, account string) string {
	if o.output != "" {
		return o.output
	}
	return fmt.Sprintf("%s-%s.csv", ch, account)
}
