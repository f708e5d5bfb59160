package squish

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/meigma/squish/core"
	"github.com/meigma/squish/internal/codec"
)

// NewWriter returns a CompressWriter that writes compressed data to dst.
// The caller must Close the writer to flush the final block; dst is not closed.
func NewWriter(dst io.Writer, opts ...Option) (CompressWriter, error) {
	cfg := newConfig(opts)
	w, err := cfg.compression.NewWriter(dst, core.WriterConfig{
		BlockSize: cfg.blockSize,
		Level:     cfg.level,
		Observers: cfg.observers,
		Logger:    cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s writer: %w", cfg.compression.Name(), err)
	}
	return w, nil
}

// NewDecoder returns a Decoder that writes decompressed data to dst.
func NewDecoder(dst io.Writer, opts ...Option) (Decoder, error) {
	cfg := newConfig(opts)
	d, err := cfg.compression.NewDecoder(dst, core.DecoderConfig{
		Observers: cfg.observers,
		Logger:    cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s decoder: %w", cfg.compression.Name(), err)
	}
	return d, nil
}

// Compress reads src until EOF and writes the compressed stream to dst.
// Returns the number of compressed bytes written.
//
// Observer failures do not stop compression; they are returned, joined,
// after the stream is complete.
func Compress(ctx context.Context, dst io.Writer, src io.Reader, opts ...Option) (int64, error) {
	w, err := NewWriter(dst, opts...)
	if err != nil {
		return 0, err
	}
	if _, err := codec.CopyWithContext(ctx, w, src); err != nil {
		// Close releases observers; the stream is incomplete either way.
		_ = w.Close()
		return w.BytesWritten(), fmt.Errorf("compress: %w", err)
	}
	closeErr := w.Close()
	return w.BytesWritten(), closeErr
}

// Decompress reads the compressed stream in src and writes the decoded data to dst.
// Returns the number of decompressed bytes written.
func Decompress(ctx context.Context, dst io.Writer, src io.Reader, opts ...Option) (int64, error) {
	d, err := NewDecoder(dst, opts...)
	if err != nil {
		return 0, err
	}
	n, err := d.Decode(ctx, src)
	return n, errors.Join(err, d.Close())
}
