// Command analyze-modes prints the resonator mode catalog for a cavity and
// checks each mode against the spectrum of the bank's impulse response.
//
// Usage:
//
//	analyze-modes -radius 1 -depth 1
//	analyze-modes -radius 3 -depth 2 -rate 48000 -membrane
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/tphakala/go-drum-synth/internal/mathutil"
)

const (
	defaultRadius = 1.0
	defaultDepth  = 1.0
	defaultRate   = 44100.0

	// analysisLength is the FFT length of the impulse response.
	analysisLength = 1 << 16

	// membraneGrid is the grid edge used for the membrane spectrum.
	membraneGrid = 64
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	radius := flag.Float64("radius", defaultRadius, "Cavity radius in metres")
	depth := flag.Float64("depth", defaultDepth, "Cavity depth in metres")
	rate := flag.Float64("rate", defaultRate, "Sample rate in Hz")
	membrane := flag.Bool("membrane", false, "Also print the strongest membrane partials")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if *verbose {
		log.Printf("Cavity: radius=%.3f m depth=%.3f m", *radius, *depth)
		log.Printf("Sample rate: %.0f Hz, FFT length: %d", *rate, analysisLength)
	}

	reports, err := measureModes(*radius, *depth, *rate)
	if err != nil {
		return err
	}

	fmt.Println("=== Resonator Modes ===")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tm\tk\tn\texpected Hz\tmeasured Hz\terror Hz\t")
	for i, r := range reports {
		order := mathutil.BesselZeroOrders[i/mathutil.AxialModes]
		measured := "-"
		deviation := "-"
		if r.resolved {
			measured = fmt.Sprintf("%.2f", r.measured)
			deviation = fmt.Sprintf("%+.2f", r.measured-r.expected)
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.2f\t%s\t%s\t\n",
			i, order[0], order[1], i%mathutil.AxialModes, r.expected, measured, deviation)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if *membrane {
		partials, err := membranePartials(*radius, *rate, membraneGrid)
		if err != nil {
			return err
		}
		fmt.Printf("\n=== Membrane Partials (%dx%d grid) ===\n", membraneGrid, membraneGrid)
		for i, f := range partials {
			fmt.Printf("  %d: %.2f Hz\n", i+1, f)
		}
	}

	return nil
}
