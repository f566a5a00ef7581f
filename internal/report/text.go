// Package report renders simulations and expectations for people and for
// other programs.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cory-johannsen/reroll/internal/ev"
	"github.com/cory-johannsen/reroll/internal/montecarlo"
)

const barGlyph = "█"

var printer = message.NewPrinter(language.English)

// Thousands formats n with comma group separators, e.g. 1,000,000.
func Thousands(n int) string {
	return printer.Sprintf("%d", n)
}

// Title is the heading used for a simulation in every output format.
func Title(dice, trials int) string {
	return fmt.Sprintf("Distribution with %dD%d (%s trials)", dice, dice, Thousands(trials))
}

// WriteEquations writes the expectation system one equation per line in the
// form "const = c0*X_0 + c1*X_1 + ...", right-aligning every number.
func WriteEquations(w io.Writer, sys ev.System) error {
	width := sys.Dice + 1
	for i, row := range sys.Rows {
		terms := make([]string, len(row))
		for j, v := range row {
			terms[j] = fmt.Sprintf("%*d*X_%d", width, v, j)
		}
		if _, err := fmt.Fprintf(w, "%*d = %s\n", width, sys.Consts[i], strings.Join(terms, " + ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteExpectation writes the full diagnostic for an exact expectation: the
// game, the system being solved and the resulting value.
func WriteExpectation(w io.Writer, e ev.Expectation) error {
	n := e.System.Size()
	plural := "s"
	if n == 1 {
		plural = ""
	}
	if _, err := fmt.Fprintf(w, "Running for %dd%d.\nSolving %d linear equation%s:\n", e.Dice, e.Dice, n, plural); err != nil {
		return err
	}
	if err := WriteEquations(w, e.System); err != nil {
		return err
	}
	exact := ""
	if e.Exact != nil {
		exact = " (" + e.Exact.RatString() + ")"
	}
	_, err := fmt.Fprintf(w, "EV = %s%s\n", strconv.FormatFloat(e.Value, 'g', -1, 64), exact)
	return err
}

// WriteHistogram writes one row per observed round count with its share of
// trials and a bar scaled so that the most common count spans width glyphs.
func WriteHistogram(w io.Writer, h *montecarlo.Histogram, width int) error {
	buckets := h.Buckets()
	peak := 0
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}
	if _, err := fmt.Fprintf(w, "%7s %12s %9s\n", "# Tries", "count", "% Results"); err != nil {
		return err
	}
	for _, b := range buckets {
		bar := int(math.Round(float64(b.Count) / float64(peak) * float64(width)))
		if _, err := fmt.Fprintf(w, "%7d %12s %8.3f%% %s\n",
			b.Rounds, Thousands(b.Count), 100*h.Fraction(b.Rounds), strings.Repeat(barGlyph, bar)); err != nil {
			return err
		}
	}
	return nil
}

// WriteSimulation writes the title, text histogram and summary of sim.
func WriteSimulation(w io.Writer, sim montecarlo.Simulation, width int) error {
	if _, err := fmt.Fprintln(w, Title(sim.Dice, sim.Trials)); err != nil {
		return err
	}
	if err := WriteHistogram(w, sim.Histogram(), width); err != nil {
		return err
	}
	s := sim.Summary
	_, err := fmt.Fprintf(w, "mean %.4f ± %.4f (σ %.4f)  median %g  p90 %g  p99 %g  range %d-%d\n",
		s.Mean, s.StdErr, s.StdDev, s.Median, s.P90, s.P99, s.Min, s.Max)
	return err
}
