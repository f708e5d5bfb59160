package codec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/meigma/squish/core"
	"github.com/meigma/squish/internal/progress"
)

// Compile-time interface implementation checks.
var (
	_ core.Compression    = gzipCodec{}
	_ core.CompressWriter = (*gzipWriter)(nil)
	_ core.Decoder        = (*gzipDecoder)(nil)
)

// gzipCodec writes each block as a separate gzip member, the layout eStargz
// uses for its chunks. Concatenated members are a valid gzip stream.
type gzipCodec struct{}

// Gzip returns the multi-member gzip codec.
func Gzip() core.Compression {
	return gzipCodec{}
}

func (gzipCodec) Name() string      { return "gzip" }
func (gzipCodec) Extension() string { return "gz" }

// NewWriter returns a writer that emits one gzip member per block.
// Events: EventNewStream before the first member, then EventNewMember(i)
// before member i, positioned at the member's compressed offset.
func (gzipCodec) NewWriter(dst io.Writer, cfg core.WriterConfig) (core.CompressWriter, error) {
	level := cfg.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	w := &gzipWriter{}
	n := newNotifier(dst, w, cfg.Logger, cfg.Observers)
	zw, err := gzip.NewWriterLevel(n.out, level)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	w.zw = zw
	w.blockWriter = newBlockWriter(n, core.EventNewMember, cfg.BlockSize, w.encode)
	return w, nil
}

// NewDecoder returns a decoder that raises EventNewStream once and
// EventNewMember(i) as member i begins, positioned at the decompressed offset.
func (gzipCodec) NewDecoder(dst io.Writer, cfg core.DecoderConfig) (core.Decoder, error) {
	d := &gzipDecoder{}
	d.notifier = newNotifier(dst, d, cfg.Logger, cfg.Observers)
	return d, nil
}

type gzipWriter struct {
	blockWriter
	zw *gzip.Writer
}

func (w *gzipWriter) encode(block []byte) error {
	w.zw.Reset(w.out)
	if _, err := w.zw.Write(block); err != nil {
		return err
	}
	return w.zw.Close()
}

type gzipDecoder struct {
	notifier
}

// Decode decompresses every gzip member in src.
func (d *gzipDecoder) Decode(ctx context.Context, src io.Reader) (int64, error) {
	if d.out.Closed() {
		return 0, core.ErrClosed
	}
	d.errs = nil
	start := d.out.BytesWritten()
	counted := progress.NewReader(src, -1, nil)
	br := bufio.NewReader(counted)

	zr, err := gzip.NewReader(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: empty gzip stream", core.ErrCorrupt)
		}
		return 0, fmt.Errorf("%w: %w", core.ErrCorrupt, err)
	}
	defer zr.Close()

	buf := make([]byte, copyBufferSize)
	d.notify(core.EventNewStream, 0)
	for member := int64(0); ; member++ {
		zr.Multistream(false)
		d.notify(core.EventNewMember, member)
		if err := copyWithContext(ctx, d.out, zr, buf); err != nil {
			return d.out.BytesWritten() - start, decodeErr(err)
		}
		err := zr.Reset(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return d.out.BytesWritten() - start, fmt.Errorf("%w: member %d: %w", core.ErrCorrupt, member+1, err)
		}
	}

	d.logger.Debug("gzip stream decoded",
		"stream", d.out.ID(),
		"compressed", counted.BytesRead(),
		"decompressed", d.out.BytesWritten()-start,
	)
	return d.out.BytesWritten() - start, d.observerErr()
}

// Close releases the decoder's observers.
func (d *gzipDecoder) Close() error {
	return d.out.Close()
}
