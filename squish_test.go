package squish_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/squish"
)

func TestCompressDecompress_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("squish round trip payload "), 4096)

	for _, name := range squish.CompressionNames() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := squish.CompressionByName(name)
			require.NoError(t, err)

			var compressed bytes.Buffer
			n, err := squish.Compress(context.Background(), &compressed, bytes.NewReader(payload),
				squish.WithCompression(c),
				squish.WithBlockSize(16*1024),
			)
			require.NoError(t, err)
			assert.Equal(t, int64(compressed.Len()), n)
			assert.Less(t, n, int64(len(payload)))

			var out bytes.Buffer
			m, err := squish.Decompress(context.Background(), &out, &compressed, squish.WithCompression(c))
			require.NoError(t, err)
			assert.Equal(t, int64(len(payload)), m)
			assert.Equal(t, payload, out.Bytes())
		})
	}
}

func TestNewWriter_EventsPerBlock(t *testing.T) {
	t.Parallel()

	rec := squish.NewRecorder()
	var dst bytes.Buffer
	w, err := squish.NewWriter(&dst,
		squish.WithBlockSize(1024),
		squish.WithObservers(rec),
	)
	require.NoError(t, err)

	_, err = w.Write(make([]byte, 3000))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	events := rec.Events()
	require.Len(t, events, 4)
	assert.Equal(t, squish.EventNewStream, events[0].Kind())
	for i, e := range events[1:] {
		assert.Equal(t, squish.EventNewMember, e.Kind())
		assert.Equal(t, int64(i), e.Counter())
		assert.Same(t, w, e.Source())
	}
	assert.Equal(t, int64(dst.Len()), w.BytesWritten())
}

func TestNewWriter_RegisterAfterCreate(t *testing.T) {
	t.Parallel()

	var got []string
	obs := squish.OnProgress(func(e squish.ProgressEvent) error {
		got = append(got, e.String())
		return nil
	})

	w, err := squish.NewWriter(io.Discard, squish.WithCompression(squish.ZstdCompression()))
	require.NoError(t, err)
	w.RegisterObserver(obs)
	w.RegisterObserver(obs)

	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	w.UnregisterObserver(obs)
	_, err = w.Write([]byte("def"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, []string{"new-stream #0 @0", "new-stream #0 @0", "new-block #0 @0", "new-block #0 @0"}, got)
}

func TestCompress_ObserverFailureReported(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	failing := squish.OnProgress(func(squish.ProgressEvent) error { return errBoom })

	var compressed bytes.Buffer
	_, err := squish.Compress(context.Background(), &compressed, strings.NewReader("hello"),
		squish.WithObservers(failing),
	)
	require.ErrorIs(t, err, squish.ErrObserver)
	require.ErrorIs(t, err, errBoom)

	var obsErr *squish.ObserverError
	require.ErrorAs(t, err, &obsErr)
	assert.Equal(t, squish.EventNewStream, obsErr.Kind)

	// The stream is still complete.
	var out bytes.Buffer
	_, err = squish.Decompress(context.Background(), &out, &compressed)
	require.NoError(t, err)
	assert.Equal(t, "hello", out.String())
}

func TestCompress_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := squish.Compress(ctx, io.Discard, strings.NewReader("data"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompress_SourceError(t *testing.T) {
	t.Parallel()

	errRead := errors.New("read failed")
	_, err := squish.Compress(context.Background(), io.Discard, io.MultiReader(
		strings.NewReader("partial"),
		&errReader{err: errRead},
	))
	require.ErrorIs(t, err, errRead)
	assert.NotErrorIs(t, err, squish.ErrCorrupt)
}

func TestDecompress_Corrupt(t *testing.T) {
	t.Parallel()

	_, err := squish.Decompress(context.Background(), io.Discard, strings.NewReader("not compressed"))
	require.ErrorIs(t, err, squish.ErrCorrupt)
}

func TestCompressionByName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    string
		wantErr error
	}{
		{name: "gzip", want: "gzip"},
		{name: "GZ", want: "gzip"},
		{name: " zstd ", want: "zstd"},
		{name: "zst", want: "zstd"},
		{name: "brotli", wantErr: squish.ErrUnknownCompression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := squish.CompressionByName(tt.name)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}
}

func TestPrometheusObserver(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	obs, err := squish.NewPrometheusObserver(reg)
	require.NoError(t, err)

	_, err = squish.Compress(context.Background(), io.Discard, bytes.NewReader(make([]byte, 2048)),
		squish.WithBlockSize(1024),
		squish.WithObservers(obs, squish.LogObserver(slog.New(slog.DiscardHandler), slog.LevelDebug)),
	)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "squish_progress_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFilterObserver(t *testing.T) {
	t.Parallel()

	rec := squish.NewRecorder()
	_, err := squish.Compress(context.Background(), io.Discard, bytes.NewReader(make([]byte, 2048)),
		squish.WithBlockSize(1024),
		squish.WithObservers(squish.FilterObserver(rec, squish.EventNewStream)),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count(squish.EventNewStream))
	assert.Equal(t, 0, rec.Count(squish.EventNewMember))
}

type errReader struct {
	err error
}

func (r *errReader) Read([]byte) (int, error) { return 0, r.err }
