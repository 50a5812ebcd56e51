package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/RoanBrand/StoichDashboard/stoich"
)

var errNoInput = errors.New("input ended before the composition was complete")

type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", errNoInput
	}
	return strings.TrimSpace(p.sc.Text()), nil
}

func (p *prompter) elements() ([]stoich.Symbol, error) {
	fmt.Fprintln(p.out, "Select elements present (subset of: Al, Ce, Si, Ni, Mg).")
	fmt.Fprintln(p.out, "Enter as comma-separated symbols, e.g.  Al,Ce,Si  :")
	for {
		raw, err := p.line("> ")
		if err != nil {
			return nil, err
		}
		if raw == "" {
			fmt.Fprintln(p.out, "Please enter at least one element.")
			continue
		}
		elems, err := stoich.ParseSymbols(raw)
		if err != nil {
			fmt.Fprintf(p.out, "%v. Allowed: Al, Ce, Si, Ni, Mg\n", err)
			continue
		}
		if len(elems) == 0 {
			fmt.Fprintln(p.out, "Please enter at least one element.")
			continue
		}
		return elems, nil
	}
}

func (p *prompter) wtPercent(elems []stoich.Symbol) (stoich.Composition, error) {
	fmt.Fprintln(p.out, "\nEnter wt% for each selected element.")
	c := make(stoich.Composition, len(elems))
	for _, e := range elems {
		for {
			raw, err := p.line(fmt.Sprintf("  %s wt%%: ", e))
			if err != nil {
				return nil, err
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
				fmt.Fprintln(p.out, "  Please enter a non-negative number.")
				continue
			}
			c[e] = v
			break
		}
	}
	return c, nil
}

func runInteractive(in io.Reader, out io.Writer, opts stoich.Options, historyPath string) error {
	p := &prompter{sc: bufio.NewScanner(in), out: out}

	fmt.Fprintln(out, headerStyle.Render("=== wt% → Stoichiometric Ratio (Al, Ce, Si, Ni, Mg) ==="))
	elems, err := p.elements()
	if err != nil {
		return err
	}
	comp, err := p.wtPercent(elems)
	if err != nil {
		return err
	}

	return report(out, comp, elems, opts, historyPath)
}

// report analyzes comp and prints the result the way the interactive mode does.
func report(out io.Writer, comp stoich.Composition, elems []stoich.Symbol, opts stoich.Options, historyPath string) error {
	a, err := stoich.Analyze(comp, opts)
	if err != nil {
		if errors.Is(err, stoich.ErrDomain) && comp.Sum() == 0 {
			return errors.New("please enter non-zero wt% values")
		}
		return err
	}

	printDrift(out, a.Drift)
	printAnalysis(out, a, elems)

	if historyPath != "" {
		if err = appendHistory(historyPath, newHistoryEntry(a)); err != nil {
			return fmt.Errorf("writing history: %w", err)
		}
	}
	return nil
}
