//go:build profiling
// +build profiling

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/felixge/fgprof"
	"github.com/grafana/pyroscope-go"

	"github.com/meigma/squish"
)

type profileKind string

const (
	profileCPU   profileKind = "cpu"
	profileFG    profileKind = "fgprof"
	profileTrace profileKind = "trace"
	profileNone  profileKind = "none"
)

const (
	modeCompress   = "compress"
	modeDecompress = "decompress"
	modeBoth       = "both"
)

func main() {
	var (
		format    = flag.String("format", "gzip", "compression format: gzip or zstd")
		mode      = flag.String("mode", modeBoth, "mode: compress, decompress, or both")
		size      = flag.String("size", "256MiB", "synthetic payload size")
		blockSize = flag.String("block-size", "1MiB", "uncompressed bytes per block")
		level     = flag.Int("level", 0, "compression level (0 selects the codec default)")
		observers = flag.Int("observers", 1, "number of observers registered on each stream")
		seed      = flag.Uint64("seed", 1, "payload generator seed")
		profile   = flag.String("profile", "cpu", "profile type: cpu, fgprof, trace, none")
		outDir    = flag.String("out", "profiles", "output directory for profiles")
		label     = flag.String("label", "", "label suffix for profile files")
		repeat    = flag.Int("repeat", 1, "number of iterations")
		logLevel  = flag.String("log-level", "", "log level: debug, info, warn, error")
		timeout   = flag.Duration("timeout", 15*time.Minute, "overall timeout")
		pyroAddr  = flag.String("pyroscope", "", "Pyroscope server URL (enables streaming, disables local profiles)")
	)
	flag.Parse()

	runID := time.Now().UTC().Format("20060102T150405Z")

	modeValue := strings.ToLower(*mode)
	if modeValue != modeCompress && modeValue != modeDecompress && modeValue != modeBoth {
		log.Fatalf("invalid mode %q (expected %s, %s, or %s)", *mode, modeCompress, modeDecompress, modeBoth)
	}

	profileKindValue := profileKind(strings.ToLower(*profile))
	if !isValidProfile(profileKindValue) {
		log.Fatalf("invalid profile %q (expected cpu, fgprof, trace, none)", *profile)
	}

	compression, err := squish.CompressionByName(*format)
	if err != nil {
		log.Fatalf("format: %v", err)
	}
	payloadSize, err := humanize.ParseBytes(*size)
	if err != nil {
		log.Fatalf("parse size: %v", err)
	}
	blockBytes, err := humanize.ParseBytes(*blockSize)
	if err != nil {
		log.Fatalf("parse block size: %v", err)
	}
	if *repeat < 1 {
		log.Fatalf("repeat must be >= 1")
	}

	// When Pyroscope is enabled, stream profiles instead of writing locally
	var pyroProfiler *pyroscope.Profiler
	if *pyroAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "squish-profile",
			ServerAddress:   *pyroAddr,
			// Grafana Cloud requires BasicAuth (AuthToken is deprecated)
			BasicAuthUser:     os.Getenv("PYROSCOPE_BASIC_AUTH_USER"),
			BasicAuthPassword: os.Getenv("PYROSCOPE_BASIC_AUTH_PASSWORD"),
			UploadRate:        5 * time.Second,
			Logger:            pyroscope.StandardLogger,
			Tags: map[string]string{
				"mode":    modeValue,
				"format":  compression.Name(),
				"git_sha": os.Getenv("GITHUB_SHA"),
				"git_ref": os.Getenv("GITHUB_REF_NAME"),
				"run_id":  runID,
			},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("start pyroscope: %v", err)
		}
		pyroProfiler = profiler
		log.Printf("streaming profiles to %s", *pyroAddr)
	} else if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create profile output dir: %v", err)
	}

	opts := []squish.Option{
		squish.WithCompression(compression),
		squish.WithBlockSize(int(blockBytes)),
		squish.WithLevel(*level),
	}
	if *logLevel != "" {
		lvl, err := parseLogLevel(*logLevel)
		if err != nil {
			log.Fatalf("parse log level: %v", err)
		}
		opts = append(opts, squish.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))))
	}
	recorder := squish.NewRecorder()
	for range *observers {
		opts = append(opts, squish.WithObservers(recorder))
	}

	log.Printf("generating %s payload", humanize.IBytes(payloadSize))
	payload := generatePayload(int(payloadSize), *seed)

	// Decompress-only runs still need a compressed input.
	var compressed bytes.Buffer
	if modeValue == modeDecompress {
		if _, err := squish.Compress(context.Background(), &compressed, bytes.NewReader(payload), opts...); err != nil {
			log.Fatalf("prepare compressed input: %v", err)
		}
	}

	labelParts := []string{modeValue, compression.Name()}
	if *label != "" {
		labelParts = append(labelParts, sanitizeLabel(*label))
	}
	labelParts = append(labelParts, runID)
	labelValue := strings.Join(labelParts, "_")

	// Only start local profiling when not streaming to Pyroscope
	var stopProfile func() error
	if *pyroAddr == "" {
		stopProfile, err = startProfile(profileKindValue, *outDir, labelValue)
		if err != nil {
			log.Fatalf("start profile: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	for i := range *repeat {
		if *repeat > 1 {
			log.Printf("iteration %d/%d", i+1, *repeat)
		}
		recorder.Reset()

		if modeValue == modeCompress || modeValue == modeBoth {
			compressed.Reset()
			start := time.Now()
			n, err := squish.Compress(ctx, &compressed, bytes.NewReader(payload), opts...)
			if err != nil {
				log.Fatalf("compress: %v", err)
			}
			elapsed := time.Since(start)
			log.Printf("compress complete: %s (%s -> %s, %s/s, %d events)",
				elapsed, humanize.IBytes(payloadSize), humanize.IBytes(uint64(n)),
				humanize.IBytes(throughput(payloadSize, elapsed)), len(recorder.Events()))
		}

		if modeValue == modeDecompress || modeValue == modeBoth {
			start := time.Now()
			n, err := squish.Decompress(ctx, io.Discard, bytes.NewReader(compressed.Bytes()), opts...)
			if err != nil {
				log.Fatalf("decompress: %v", err)
			}
			elapsed := time.Since(start)
			log.Printf("decompress complete: %s (%s, %s/s)",
				elapsed, humanize.IBytes(uint64(n)), humanize.IBytes(throughput(uint64(n), elapsed)))
		}
	}

	// Stop profiling - either Pyroscope or local
	if pyroProfiler != nil {
		if err := pyroProfiler.Stop(); err != nil {
			log.Fatalf("stop pyroscope: %v", err)
		}
		log.Printf("pyroscope profiling stopped")
		return
	}
	if stopErr := stopProfile(); stopErr != nil {
		log.Fatalf("stop profile: %v", stopErr)
	}
	if err := writeHeapProfile(*outDir, labelValue); err != nil {
		log.Fatalf("write heap profile: %v", err)
	}
	if err := writeAllocsProfile(*outDir, labelValue); err != nil {
		log.Fatalf("write allocs profile: %v", err)
	}
}

// generatePayload returns size bytes of text built from a small vocabulary,
// which compresses roughly like source code or logs.
func generatePayload(size int, seed uint64) []byte {
	words := []string{
		"stream", "block", "member", "frame", "observer", "event", "position",
		"counter", "compress", "decompress", "level", "ratio", "\n", "\t",
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	buf := make([]byte, 0, size+16)
	for len(buf) < size {
		buf = append(buf, words[rng.IntN(len(words))]...)
		buf = append(buf, ' ')
	}
	return buf[:size]
}

func throughput(n uint64, elapsed time.Duration) uint64 {
	if elapsed <= 0 {
		return 0
	}
	return uint64(float64(n) / elapsed.Seconds())
}

func isValidProfile(kind profileKind) bool {
	switch kind {
	case profileCPU, profileFG, profileTrace, profileNone:
		return true
	default:
		return false
	}
}

func startProfile(kind profileKind, outDir, label string) (func() error, error) {
	switch kind {
	case profileCPU:
		path := filepath.Join(outDir, "cpu_"+label+".pprof")
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		return func() error {
			pprof.StopCPUProfile()
			return f.Close()
		}, nil
	case profileFG:
		path := filepath.Join(outDir, "fgprof_"+label+".pprof")
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		stop := fgprof.Start(f, fgprof.FormatPprof)
		return func() error {
			stopErr := stop()
			closeErr := f.Close()
			return errors.Join(stopErr, closeErr)
		}, nil
	case profileTrace:
		path := filepath.Join(outDir, "trace_"+label+".out")
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		return func() error {
			trace.Stop()
			return f.Close()
		}, nil
	case profileNone:
		return func() error { return nil }, nil
	default:
		return nil, fmt.Errorf("unknown profile type: %s", kind)
	}
}

func writeHeapProfile(outDir, label string) error {
	path := filepath.Join(outDir, "heap_"+label+".pprof")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}

func writeAllocsProfile(outDir, label string) error {
	path := filepath.Join(outDir, "allocs_"+label+".pprof")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return pprof.Lookup("allocs").WriteTo(f, 0)
}

func sanitizeLabel(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, value)
}

func parseLogLevel(value string) (slog.Leveler, error) {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, fmt.Errorf("unknown level %q", value)
	}
}
