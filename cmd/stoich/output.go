package main

import (
	"fmt"
	"io"

	"github.com/RoanBrand/StoichDashboard/stoich"
	"github.com/charmbracelet/lipgloss"
)

var (
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	formulaStyle = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func errorPrefix() string {
	return errorStyle.Render("Error:")
}

func printDrift(w io.Writer, d stoich.Drift) {
	if !d.Exceeded {
		return
	}
	fmt.Fprintf(w, "\n%s provided wt%% sum to %.3f (not ~100). I will renormalize.\n", warningStyle.Render("Note:"), d.Sum)
}

// printAnalysis lists ratios in the order the elements were entered.
func printAnalysis(w io.Writer, a *stoich.Analysis, elems []stoich.Symbol) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("--- Results ---"))
	fmt.Fprintln(w, "Atomic ratios (normalized to the smallest = 1):")
	for _, e := range elems {
		fmt.Fprintf(w, "  %s: %.4f\n", e, a.Ratios[e])
	}
	fmt.Fprintln(w, "\nSmall-integer stoichiometry:")
	fmt.Fprintln(w, "  "+formulaStyle.Render(a.FormulaString))
	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("(notes) Best multiplier tried: ×%d, total deviation %.4f. "+
		"If you want stricter/looser integerization, adjust --max-mult/--tol.", a.Multiplier, a.Deviation)))
}
