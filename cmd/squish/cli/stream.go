package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/opencontainers/go-digest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/squish"
	"github.com/meigma/squish/cmd/squish/cli/config"
)

// stdio is the path that selects stdin or stdout.
const stdio = "-"

// input is the source of a command. Size is -1 when unknown.
type input struct {
	io.ReadCloser
	name string
	size int64
}

// openInput opens the named file, or stdin when name is empty or "-".
func openInput(name string) (*input, error) {
	if name == "" || name == stdio {
		return &input{ReadCloser: io.NopCloser(os.Stdin), name: stdio, size: -1}, nil
	}
	f, err := os.Open(name) //nolint:gosec // G304: name is user-provided CLI argument
	if err != nil {
		return nil, err
	}
	size := int64(-1)
	if info, statErr := f.Stat(); statErr == nil && info.Mode().IsRegular() {
		size = info.Size()
	}
	return &input{ReadCloser: f, name: name, size: size}, nil
}

// output is the destination of a command. It hashes everything written.
type output struct {
	file     *os.File
	path     string
	digester digest.Digester
	w        io.Writer
}

// createOutput creates the named file, or uses stdout when name is empty or "-".
// Parent directories are created as needed.
func createOutput(name string) (*output, error) {
	out := &output{digester: digest.Canonical.Digester()}
	if name == "" || name == stdio {
		out.file = os.Stdout
	} else {
		if dir := filepath.Dir(name); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, err
			}
		}
		f, err := os.Create(name) //nolint:gosec // G304: name is user-provided CLI argument
		if err != nil {
			return nil, err
		}
		out.file = f
		out.path = name
	}
	out.w = io.MultiWriter(out.file, out.digester.Hash())
	return out, nil
}

func (o *output) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

// Digest returns the digest of the bytes written so far.
func (o *output) Digest() digest.Digest {
	return o.digester.Digest()
}

// finish closes a file output, removing it when the command failed.
func (o *output) finish(failed bool) error {
	if o.path == "" {
		return nil
	}
	err := o.file.Close()
	if failed {
		return errors.Join(err, os.Remove(o.path))
	}
	return err
}

// bindFlags binds the command's flags to config keys. Flags are bound when the
// command runs so commands can share key names.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// runObservers holds the observers attached for a single command run.
type runObservers struct {
	recorder *squish.Recorder
	registry *prometheus.Registry
	metrics  string
	list     []squish.Observer
}

// newRunObservers builds the observers selected by cfg.
func newRunObservers(cfg config.Config, logger *slog.Logger) (*runObservers, error) {
	r := &runObservers{recorder: squish.NewRecorder(), metrics: cfg.Metrics.File}
	r.list = append(r.list, r.recorder)

	if cfg.Events.Enabled {
		kinds := make([]squish.EventKind, 0, len(cfg.Events.Kinds))
		for _, name := range cfg.Events.Kinds {
			kind, err := squish.ParseEventKind(name)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, kind)
		}
		eventLogger := logger
		if !verbose {
			eventLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		}
		r.list = append(r.list, squish.FilterObserver(squish.LogObserver(eventLogger, slog.LevelInfo), kinds...))
	}

	if r.metrics != "" {
		r.registry = prometheus.NewRegistry()
		obs, err := squish.NewPrometheusObserver(r.registry)
		if err != nil {
			return nil, err
		}
		r.list = append(r.list, obs)
	}
	return r, nil
}

// units returns the number of blocks or members recorded.
func (r *runObservers) units() int {
	return r.recorder.Count(squish.EventNewBlock) + r.recorder.Count(squish.EventNewMember)
}

// writeMetrics exports the collected metrics in the node_exporter textfile format.
func (r *runObservers) writeMetrics() error {
	if r.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.metrics, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// parseBlockSize parses a human readable size such as "64KiB" or "1MB".
func parseBlockSize(s string) (int, error) {
	size, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid block size %q: %w", s, err)
	}
	if size == 0 || size > 1<<30 {
		return 0, fmt.Errorf("invalid block size %q: must be between 1B and 1GiB", s)
	}
	return int(size), nil
}

// ratio formats out as a percentage of in.
func ratio(out, in int64) string {
	if in <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(out)*100/float64(in))
}
