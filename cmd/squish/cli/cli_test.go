package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/squish"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{
			name: "corrupt",
			err:  fmt.Errorf("decode: %w", squish.ErrCorrupt),
			want: "Error: input is not a valid compressed stream",
		},
		{
			name: "unknown compression",
			err:  fmt.Errorf("%w: %q", squish.ErrUnknownCompression, "lz4"),
			want: `Error: squish: unknown compression: "lz4" (supported: gzip, zstd)`,
		},
		{
			name: "canceled",
			err:  fmt.Errorf("compress: %w", context.Canceled),
			want: "Error: operation canceled",
		},
		{
			name: "other",
			err:  errors.New("disk full"),
			want: "Error: disk full",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, formatError(tt.err))
		})
	}
}

func TestParseBlockSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "1MiB", want: 1 << 20},
		{in: "64KiB", want: 64 << 10},
		{in: " 16B ", want: 16},
		{in: "1000", want: 1000},
		{in: "0", wantErr: true},
		{in: "2GiB", wantErr: true},
		{in: "lots", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := parseBlockSize(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecompressFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		format   string
		input    string
		explicit bool
		want     string
	}{
		{name: "extension gz", format: "zstd", input: "a.tar.gz", want: "gzip"},
		{name: "extension zst", format: "gzip", input: "a.tar.zst", want: "zstd"},
		{name: "unknown extension", format: "zstd", input: "a.bin", want: "zstd"},
		{name: "stdin", format: "zstd", input: "-", want: "zstd"},
		{name: "explicit wins", format: "gzip", input: "a.zst", explicit: true, want: "gzip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := decompressFormat(tt.format, tt.input, tt.explicit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}

	_, err := decompressFormat("brotli", "", false)
	require.ErrorIs(t, err, squish.ErrUnknownCompression)
}

func TestUnitName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "member", unitName(squish.GzipCompression(), 1))
	assert.Equal(t, "members", unitName(squish.GzipCompression(), 3))
	assert.Equal(t, "frames", unitName(squish.ZstdCompression(), 0))
}

func TestRatio(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "50.0%", ratio(50, 100))
	assert.Equal(t, "n/a", ratio(10, 0))
}

func TestProgressMode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", progressMode("plain"))
	assert.Equal(t, "tty", progressMode("tty"))
	assert.Equal(t, "auto", progressMode("fancy"))
	assert.False(t, shouldShowProgress("plain"))
	assert.True(t, shouldShowProgress("tty"))
}
