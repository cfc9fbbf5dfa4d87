package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/floats"

	drum "github.com/tphakala/go-drum-synth"
)

const (
	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// wavFormatPCM is the WAVE_FORMAT_PCM tag.
	wavFormatPCM = 1

	// writeChunkFrames is the number of frames converted per encoder write.
	writeChunkFrames = 16384

	maxVelocity      = 127
	progressInterval = 10 // Print progress every N%
	percentScale     = 100
)

// hit is one scheduled strike.
type hit struct {
	frame    int
	velocity int
}

// renderOptions controls one offline run of the host loop.
type renderOptions struct {
	frames    int
	blockSize int
	hits      []hit
	verbose   bool
}

// renderResult holds interleaved output and run statistics.
type renderResult struct {
	samples []float64
	frames  int
	hits    int
	dropped uint64
	faults  uint64
	peak    float64
	rms     float64
}

// parseHits parses "t[:velocity],..." into hits sorted by frame.
func parseHits(spec string, sampleRate float64, defaultVel int) ([]hit, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	if defaultVel < 1 || defaultVel > maxVelocity {
		return nil, fmt.Errorf("velocity must be 1-%d, got %d", maxVelocity, defaultVel)
	}

	parts := strings.Split(spec, ",")
	hits := make([]hit, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		timeStr, velStr, hasVel := strings.Cut(part, ":")

		seconds, err := strconv.ParseFloat(timeStr, 64)
		if err != nil || seconds < 0 || math.IsInf(seconds, 0) {
			return nil, fmt.Errorf("invalid hit time %q", part)
		}

		vel := defaultVel
		if hasVel {
			vel, err = strconv.Atoi(velStr)
			if err != nil || vel < 1 || vel > maxVelocity {
				return nil, fmt.Errorf("invalid hit velocity %q", part)
			}
		}

		hits = append(hits, hit{frame: int(seconds * sampleRate), velocity: vel})
	}

	slices.SortStableFunc(hits, func(a, b hit) int { return a.frame - b.frame })
	return hits, nil
}

func validateBitDepth(bitDepth int) error {
	switch bitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
		return nil
	default:
		return fmt.Errorf("unsupported bit depth %d (use 16, 24 or 32)", bitDepth)
	}
}

// renderDrum drives a synthesizer block by block, striking at the start of
// each block that contains a scheduled hit.
func renderDrum[F drum.Float](config *drum.Config, opts renderOptions) (*renderResult, error) {
	s, err := drum.New[F](config)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}
	defer s.Close()

	channels := s.Channels()
	block := make([]F, opts.blockSize*channels)
	out := make([]float64, 0, opts.frames*channels)
	progress := newProgressTracker(int64(opts.frames), opts.verbose)

	next := 0
	for off := 0; off < opts.frames; off += opts.blockSize {
		n := min(opts.blockSize, opts.frames-off)
		for next < len(opts.hits) && opts.hits[next].frame < off+n {
			s.NoteOn(opts.hits[next].velocity)
			next++
		}

		written := s.ProcessInterleaved(block[:n*channels])
		for _, v := range block[:written*channels] {
			out = append(out, float64(v))
		}
		progress.reportIfNeeded(int64(off + n))
	}

	result := &renderResult{
		samples: out,
		frames:  len(out) / channels,
		hits:    next,
		dropped: s.Dropped(),
		faults:  s.Faults(),
	}
	if len(out) > 0 {
		result.peak = peakAbs(out)
		result.rms = floats.Norm(out, 2) / math.Sqrt(float64(len(out)))
	}
	return result, nil
}

func peakAbs(s []float64) float64 {
	return math.Max(floats.Max(s), -floats.Min(s))
}

// normalizePeak scales s in place so its absolute peak equals target and
// returns the applied factor. Silent input is left untouched.
func normalizePeak(s []float64, target float64) float64 {
	if len(s) == 0 {
		return 1
	}
	p := peakAbs(s)
	if p == 0 {
		return 1
	}
	scale := target / p
	floats.Scale(scale, s)
	return scale
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// quantizeInto converts float samples in [-1, 1] into dst, clamping out of
// range values. It returns the number of samples written.
func quantizeInto(src []float64, dst []int, maxVal float64) int {
	n := min(len(src), len(dst))
	for i := range n {
		sample := src[i]
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		dst[i] = int(sample * maxVal)
	}
	return n
}

// wavOutputWriter wraps the output file and the go-audio encoder.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
	maxVal  float64
}

// createWAVOutput creates the output file and a PCM encoder.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			Data:           make([]int, writeChunkFrames*channels),
			SourceBitDepth: bitDepth,
		},
		maxVal: getMaxValue(bitDepth),
	}, nil
}

// WriteSamples quantizes and writes interleaved float samples.
func (w *wavOutputWriter) WriteSamples(samples []float64) error {
	data := w.buf.Data[:cap(w.buf.Data)]
	for len(samples) > 0 {
		n := quantizeInto(samples, data, w.maxVal)
		w.buf.Data = data[:n]
		if err := w.encoder.Write(w.buf); err != nil {
			return fmt.Errorf("failed to write audio data: %w", err)
		}
		samples = samples[n:]
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return w.file.Close()
}

// writeWAV writes interleaved samples to path.
func writeWAV(path string, samples []float64, sampleRate, bitDepth, channels int) (err error) {
	output, err := createWAVOutput(path, sampleRate, bitDepth, channels)
	if err != nil {
		return err
	}
	// Close output, capturing close errors on success path (important for WAV header updates)
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	return output.WriteSamples(samples)
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	verbose      bool
}

// newProgressTracker creates a new progress tracker.
func newProgressTracker(totalFrames int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalFrames: totalFrames,
		verbose:     verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentFrames int64) {
	if !p.verbose || p.totalFrames == 0 {
		return
	}

	progress := int(float64(currentFrames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}
