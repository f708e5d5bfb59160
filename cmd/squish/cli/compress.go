package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/meigma/squish"
	"github.com/meigma/squish/internal/progress"
)

var compressCmd = &cobra.Command{
	Use:   "compress [input] [output]",
	Short: "Compress a file or stream",
	Long: `Compress splits the input into blocks and writes each block as an independently
decodable unit: a gzip member or a zstd frame.

The digest and size of the compressed output are printed to stderr.

Examples:
  squish compress data.tar data.tar.gz
  squish compress --format zstd --block-size 4MiB data.tar data.tar.zst
  tar c ./dir | squish compress --events > dir.tar.gz`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: bindCodecFlags,
	RunE:    runCompress,
}

func init() {
	addCodecFlags(compressCmd)
	compressCmd.Flags().StringP("block-size", "b", "1MiB", "Uncompressed bytes per block (e.g. 64KiB, 4MiB)")
	compressCmd.Flags().IntP("level", "l", 0, "Compression level (0 selects the codec default)")
	rootCmd.AddCommand(compressCmd)
}

// addCodecFlags registers the flags shared by compress and decompress.
func addCodecFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "gzip", "Compression format (gzip, zstd)")
	cmd.Flags().Bool("events", false, "Log every progress event to stderr")
	cmd.Flags().StringSlice("event-kinds", nil, "Only log these event kinds (new-block, new-stream, new-member)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file when done")
	cmd.Flags().String("progress", "auto", "Progress display: auto, tty, or plain")
}

func bindCodecFlags(cmd *cobra.Command, _ []string) error {
	keys := map[string]string{
		"format":       "format",
		"events":       "events.enabled",
		"event-kinds":  "events.kinds",
		"metrics-file": "metrics.file",
		"progress":     "progress",
	}
	if cmd.Flags().Lookup("block-size") != nil {
		keys["block-size"] = "block-size"
		keys["level"] = "level"
	}
	return bindFlags(cmd, keys)
}

func runCompress(_ *cobra.Command, args []string) (err error) {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	compression, err := squish.CompressionByName(cfg.Format)
	if err != nil {
		return err
	}
	blockSize, err := parseBlockSize(cfg.BlockSize)
	if err != nil {
		return err
	}

	logger := newLogger()
	observers, err := newRunObservers(cfg, logger)
	if err != nil {
		return err
	}

	in, err := openInput(argAt(args, 0))
	if err != nil {
		return err
	}
	defer in.Close()

	outName := argAt(args, 1)
	if (outName == "" || outName == stdio) && term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("refusing to write compressed data to a terminal")
	}
	out, err := createOutput(outName)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.finish(err != nil))
	}()

	ctx, cancel := signalContext()
	defer cancel()

	callback, finish := newInputProgress(cfg.Progress, in.size, "Compressing")
	src := progress.NewReader(in, in.size, callback)

	logger.Debug("compressing",
		"input", in.name,
		"format", compression.Name(),
		"block_size", blockSize,
		"level", cfg.Level,
	)
	written, err := squish.Compress(ctx, out, src,
		squish.WithCompression(compression),
		squish.WithBlockSize(blockSize),
		squish.WithLevel(cfg.Level),
		squish.WithLogger(logger),
		squish.WithObservers(observers.list...),
	)
	finish()
	if err != nil {
		return err
	}
	if err := observers.writeMetrics(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s %s -> %s (%s, %d %s)\n",
		out.Digest(),
		humanize.IBytes(uint64(src.BytesRead())),
		humanize.IBytes(uint64(written)),
		ratio(written, src.BytesRead()),
		observers.units(),
		unitName(compression, observers.units()),
	)
	return nil
}

// unitName returns the name of the codec's independently decodable unit.
func unitName(c squish.Compression, n int) string {
	name := "frame"
	if c.Name() == squish.GzipCompression().Name() {
		name = "member"
	}
	if n != 1 {
		name += "s"
	}
	return name
}

// argAt returns args[i], or "" when absent.
func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
