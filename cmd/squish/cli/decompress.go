package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/squish"
	"github.com/meigma/squish/internal/progress"
)

var decompressCmd = &cobra.Command{
	Use:   "decompress [input] [output]",
	Short: "Decompress a file or stream",
	Long: `Decompress decodes a gzip or zstd stream.

When --format is not given and the input has a .gz or .zst extension, the
format is taken from the extension.

Examples:
  squish decompress data.tar.gz data.tar
  squish decompress --format zstd < data.tar.zst | tar x`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: bindCodecFlags,
	RunE:    runDecompress,
}

func init() {
	addCodecFlags(decompressCmd)
	rootCmd.AddCommand(decompressCmd)
}

func runDecompress(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	inName := argAt(args, 0)
	compression, err := decompressFormat(cfg.Format, inName, cmd.Flags().Changed("format"))
	if err != nil {
		return err
	}

	logger := newLogger()
	observers, err := newRunObservers(cfg, logger)
	if err != nil {
		return err
	}

	in, err := openInput(inName)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutput(argAt(args, 1))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.finish(err != nil))
	}()

	ctx, cancel := signalContext()
	defer cancel()

	callback, finish := newInputProgress(cfg.Progress, in.size, "Decompressing")
	src := progress.NewReader(in, in.size, callback)

	logger.Debug("decompressing", "input", in.name, "format", compression.Name())
	written, err := squish.Decompress(ctx, out, src,
		squish.WithCompression(compression),
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

	fmt.Fprintf(os.Stderr, "%s %s -> %s\n",
		out.Digest(),
		humanize.IBytes(uint64(src.BytesRead())),
		humanize.IBytes(uint64(written)),
	)
	return nil
}

// decompressFormat picks the codec from the flag or, when the flag was not
// set, from the input file extension.
func decompressFormat(format, input string, explicit bool) (squish.Compression, error) {
	if !explicit && input != "" && input != stdio {
		ext := strings.TrimPrefix(filepath.Ext(input), ".")
		if c, err := squish.CompressionByName(ext); err == nil {
			return c, nil
		}
	}
	return squish.CompressionByName(format)
}
