// Command render-wav plays the drum model like a host would, block by block,
// and writes the result to a WAV file.
//
// Usage:
//
//	render-wav out.wav
//	render-wav -hits 0,0.5,1:60,1.5 -tension 0.8 out.wav
//	render-wav -size 3 -depth 2 -duration 4 -peak 0.9 out.wav
//	render-wav -fast -resolution 128 -workers 1 out.wav   # float32, coarse grid
//
// Each hit is a time in seconds with an optional MIDI velocity after a colon.
// Hits are quantized to the start of the host block they fall in.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	drum "github.com/tphakala/go-drum-synth"
)

const (
	// CLI defaults
	defaultDuration  = 2.0
	defaultBlockSize = 512
	defaultBitDepth  = 16
	defaultVelocity  = 100
	defaultHits      = "0"
	minRequiredArgs  = 1
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	defaults := drum.DefaultConfig()

	// Parse command line flags
	duration := flag.Float64("duration", defaultDuration, "Length of the rendering in seconds")
	rate := flag.Float64("rate", defaults.SampleRate, "Sample rate in Hz")
	channels := flag.Int("channels", defaults.Channels, "Number of output channels")
	bitDepth := flag.Int("bits", defaultBitDepth, "Output bit depth: 16, 24 or 32")
	resolution := flag.Int("resolution", defaults.Resolution, "Membrane grid edge N")
	workers := flag.Int("workers", defaults.Workers, "Goroutines sharing each membrane update (0 = render goroutine only)")
	blockSize := flag.Int("block", defaultBlockSize, "Host block size in frames")
	size := flag.Float64("size", defaults.MembraneSize, "Membrane size in metres (0.75-10)")
	tension := flag.Float64("tension", defaults.Tension, "Membrane tension (0.01-1)")
	depth := flag.Float64("depth", defaults.Depth, "Cavity depth in metres (0.75-10)")
	randomness := flag.Float64("randomness", defaults.Randomness, "Strike jitter in grid cells (0-50)")
	hitList := flag.String("hits", defaultHits, "Comma-separated hit times in seconds, each optionally suffixed :velocity")
	velocity := flag.Int("velocity", defaultVelocity, "Velocity for hits without one (1-127)")
	peak := flag.Float64("peak", 0, "Normalize the rendering to this peak (0 disables)")
	gain := flag.Float64("gain", defaults.OutputGain, "Output gain applied by the synthesizer")
	seed := flag.Uint64("seed", 0, "Seed for the strike jitter")
	fast := flag.Bool("fast", false, "Use float32 precision")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	// Validate arguments before setting up profiling
	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s out.wav                           # One hit, 2 seconds\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -hits 0,0.25,0.5:60 roll.wav      # Three hits, the last one soft\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -size 6 -depth 4 -peak 0.9 big.wav # Large drum, normalized\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	outputPath := args[0]

	config := *defaults
	config.SampleRate = *rate
	config.Channels = *channels
	config.Resolution = *resolution
	config.Workers = *workers
	config.MaxBlockSize = max(*blockSize, 1)
	config.OutputGain = *gain
	config.Seed = *seed
	config.MembraneSize = *size
	config.Tension = *tension
	config.Depth = *depth
	config.Randomness = *randomness
	if err := config.Validate(); err != nil {
		return err
	}

	if err := validateBitDepth(*bitDepth); err != nil {
		return err
	}

	hits, err := parseHits(*hitList, config.SampleRate, *velocity)
	if err != nil {
		return err
	}

	opts := renderOptions{
		frames:    int(*duration * config.SampleRate),
		blockSize: config.MaxBlockSize,
		hits:      hits,
		verbose:   *verbose,
	}
	if opts.frames <= 0 {
		return fmt.Errorf("duration must be positive")
	}

	if *verbose {
		log.Printf("Output: %s", outputPath)
		log.Printf("Format: %.0f Hz, %d channels, %d-bit", config.SampleRate, config.Channels, *bitDepth)
		log.Printf("Membrane: %dx%d grid, %d workers", config.Resolution, config.Resolution, config.Workers)
		log.Printf("Parameters: size=%.2f tension=%.2f depth=%.2f randomness=%.1f",
			config.MembraneSize, config.Tension, config.Depth, config.Randomness)
		log.Printf("Hits: %d, block size: %d", len(hits), opts.blockSize)
		if *fast {
			log.Printf("Precision: float32 (fast mode)")
		} else {
			log.Printf("Precision: float64 (high precision)")
		}
	}

	start := time.Now()
	var result *renderResult
	if *fast {
		result, err = renderDrum[float32](&config, opts)
	} else {
		result, err = renderDrum[float64](&config, opts)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if *peak > 0 {
		scale := normalizePeak(result.samples, *peak)
		if *verbose {
			log.Printf("Normalized by %.3f", scale)
		}
	}

	if err := writeWAV(outputPath, result.samples, int(config.SampleRate), *bitDepth, config.Channels); err != nil {
		return err
	}

	fmt.Printf("Rendered %s\n", filepath.Base(outputPath))
	fmt.Printf("  %d frames at %.0f Hz (%d channels, %d-bit)\n",
		result.frames, config.SampleRate, config.Channels, *bitDepth)
	fmt.Printf("  Hits: %d, dropped: %d, faults: %d\n", result.hits, result.dropped, result.faults)
	fmt.Printf("  Peak: %.4f, RMS: %.4f\n", result.peak, result.rms)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(result.frames)/config.SampleRate/elapsed.Seconds())

	return nil
}
