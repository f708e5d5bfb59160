package codec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/squish/core"
	"github.com/meigma/squish/internal/progress"
)

// Compile-time interface implementation checks.
var (
	_ core.Compression    = zstdCodec{}
	_ core.CompressWriter = (*zstdWriter)(nil)
	_ core.Decoder        = (*zstdDecoder)(nil)
)

// zstdCodec encodes each block as an independent zstd frame.
// Concatenated frames decode as a single stream.
type zstdCodec struct{}

// Zstd returns the framed zstd codec.
func Zstd() core.Compression {
	return zstdCodec{}
}

func (zstdCodec) Name() string      { return "zstd" }
func (zstdCodec) Extension() string { return "zst" }

// NewWriter returns a writer that emits one zstd frame per block.
// Events: EventNewStream before the first frame, then EventNewBlock(i)
// before frame i, positioned at the frame's compressed offset.
func (zstdCodec) NewWriter(dst io.Writer, cfg core.WriterConfig) (core.CompressWriter, error) {
	opts := []zstd.EOption{
		zstd.WithEncoderConcurrency(1),
		zstd.WithZeroFrames(true),
	}
	if cfg.Level != 0 {
		opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(cfg.Level)))
	}
	enc, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	w := &zstdWriter{enc: enc}
	w.blockWriter = newBlockWriter(newNotifier(dst, w, cfg.Logger, cfg.Observers), core.EventNewBlock, cfg.BlockSize, w.encode)
	return w, nil
}

// NewDecoder returns a decoder that raises EventNewStream when decoding starts.
// The zstd decoder does not expose frame boundaries, so no block events are raised.
func (zstdCodec) NewDecoder(dst io.Writer, cfg core.DecoderConfig) (core.Decoder, error) {
	d := &zstdDecoder{}
	d.notifier = newNotifier(dst, d, cfg.Logger, cfg.Observers)
	return d, nil
}

type zstdWriter struct {
	blockWriter
	enc   *zstd.Encoder
	frame []byte
}

// Close writes the final frame and releases the encoder.
func (w *zstdWriter) Close() error {
	if w.closed {
		return nil
	}
	return errors.Join(w.blockWriter.Close(), w.enc.Close())
}

func (w *zstdWriter) encode(block []byte) error {
	w.frame = w.enc.EncodeAll(block, w.frame[:0])
	_, err := w.out.Write(w.frame)
	return err
}

type zstdDecoder struct {
	notifier
}

// Decode decompresses every zstd frame in src.
func (d *zstdDecoder) Decode(ctx context.Context, src io.Reader) (int64, error) {
	if d.out.Closed() {
		return 0, core.ErrClosed
	}
	d.errs = nil
	start := d.out.BytesWritten()
	counted := progress.NewReader(src, -1, nil)
	br := bufio.NewReader(counted)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: empty zstd stream", core.ErrCorrupt)
		}
		return 0, fmt.Errorf("%w: %w", core.ErrCorrupt, err)
	}

	zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", core.ErrCorrupt, err)
	}
	defer zr.Close()

	d.notify(core.EventNewStream, 0)
	if err := copyWithContext(ctx, d.out, zr, nil); err != nil {
		return d.out.BytesWritten() - start, decodeErr(err)
	}

	d.logger.Debug("zstd stream decoded",
		"stream", d.out.ID(),
		"compressed", counted.BytesRead(),
		"decompressed", d.out.BytesWritten()-start,
	)
	return d.out.BytesWritten() - start, d.observerErr()
}

// Close releases the decoder's observers.
func (d *zstdDecoder) Close() error {
	return d.out.Close()
}
