package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/RoanBrand/StoichDashboard/log"
	"github.com/RoanBrand/StoichDashboard/stoich"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type solveResult struct {
	AnalysisID string `json:"analysis_id"`
	*stoich.Analysis
}

// parseAssignments reads arguments like "Al=71.67". The returned symbols
// keep argument order.
func parseAssignments(args []string) (stoich.Composition, []stoich.Symbol, error) {
	c := make(stoich.Composition, len(args))
	elems := make([]stoich.Symbol, 0, len(args))
	for _, arg := range args {
		name, val, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, nil, fmt.Errorf("argument %q is not of the form Element=wt%%", arg)
		}
		s, err := stoich.ParseSymbol(name)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := c[s]; dup {
			return nil, nil, fmt.Errorf("element %s given more than once", s)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("wt%% of %s: %w", s, err)
		}
		c[s] = v
		elems = append(elems, s)
	}
	return c, elems, nil
}

func newSolveCmd(o *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "solve Element=wt% ...",
		Short: "Solve a composition given as arguments",
		Example: `  stoich solve Al=71.67 Ce=28.33
  stoich solve Al=36.5 Ni=8 Ce=55.5 --order Al,Ni,Ce
  stoich solve Mg=55 Si=45 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := o.stoichOptions()
			if err != nil {
				return err
			}
			comp, elems, err := parseAssignments(args)
			if err != nil {
				return err
			}

			if !asJSON {
				return report(cmd.OutOrStdout(), comp, elems, opts, o.history)
			}

			a, err := stoich.Analyze(comp, opts)
			if err != nil {
				return err
			}
			log.Debug("solved", "formula", a.FormulaString, "multiplier", a.Multiplier)

			res := solveResult{AnalysisID: uuid.NewString(), Analysis: a}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err = enc.Encode(res); err != nil {
				return err
			}
			if o.history != "" {
				e := newHistoryEntry(a)
				e.AnalysisID = res.AnalysisID
				if err = appendHistory(o.history, e); err != nil {
					return fmt.Errorf("writing history: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full analysis as JSON")
	return cmd
}
