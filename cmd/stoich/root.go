package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/RoanBrand/StoichDashboard/log"
	"github.com/RoanBrand/StoichDashboard/stoich"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type options struct {
	maxMult        int
	tol            float64
	driftAllowance float64
	order          string
	history        string
	debug          bool
	noTTYCheck     bool
}

func (o *options) stoichOptions() (stoich.Options, error) {
	opts := stoich.Options{
		Weights:        stoich.StandardWeights(),
		MaxMultiplier:  o.maxMult,
		Tolerance:      o.tol,
		DriftAllowance: o.driftAllowance,
	}
	if o.maxMult < 1 {
		return opts, fmt.Errorf("--max-mult must be at least 1, got %d", o.maxMult)
	}
	if o.tol < 0 {
		return opts, fmt.Errorf("--tol must not be negative, got %v", o.tol)
	}
	if o.driftAllowance < 0 {
		return opts, fmt.Errorf("--drift must not be negative, got %v", o.driftAllowance)
	}
	if o.order != "" {
		order, err := stoich.ParseSymbols(o.order)
		if err != nil {
			return opts, fmt.Errorf("--order: %w", err)
		}
		opts.DisplayOrder = order
	}
	return opts.Literal(), nil
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "stoich",
		Short: "Convert wt% compositions to a small-integer stoichiometry",
		Long: `Convert wt% compositions (Al, Ce, Si, Ni, Mg) to a stoichiometric/empirical formula.

Without a subcommand, stoich asks which elements are present and their wt%,
renormalizes the composition to 100, converts it to atomic ratios and finds
the small-integer formula that fits them best (e.g. Al4Ce, Al2NiCe).

Examples:
  stoich                          # interactive
  stoich solve Al=43.5 Ce=56.5    # one-shot
  stoich solve Al=50 Ni=50 --json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if o.debug {
				log.SetOutput(cmd.ErrOrStderr(), true)
			} else {
				log.Discard()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if f, ok := in.(*os.File); ok && !o.noTTYCheck && !term.IsTerminal(int(f.Fd())) {
				return errors.New("stdin is not a terminal: use 'stoich solve' or pass --no-tty-check")
			}
			opts, err := o.stoichOptions()
			if err != nil {
				return err
			}
			return runInteractive(in, cmd.OutOrStdout(), opts, o.history)
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.IntVar(&o.maxMult, "max-mult", stoich.DefaultMaxMultiplier, "Largest multiplier to try")
	pf.Float64Var(&o.tol, "tol", stoich.DefaultTolerance, "Stop at the first multiplier whose total deviation is below this (0 tries all)")
	pf.Float64Var(&o.driftAllowance, "drift", stoich.DefaultDriftAllowance, "Warn when wt% sum further than this from 100 (0 warns on any drift)")
	pf.StringVar(&o.order, "order", "", "Element order of the formula, e.g. Al,Ni,Si,Mg,Ce")
	pf.StringVar(&o.history, "history", "", "Append each result as a JSON line to this file")
	pf.BoolVar(&o.debug, "debug", false, "Log debug output to stderr")
	root.Flags().BoolVar(&o.noTTYCheck, "no-tty-check", false, "Prompt even if stdin is not a terminal")

	root.AddCommand(newSolveCmd(o))
	root.SetErrPrefix(errorPrefix())

	return root
}
