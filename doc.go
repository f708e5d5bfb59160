// Package squish provides streaming gzip and zstd compression that reports
// its progress to observers.
//
// A compressor splits its input into blocks and emits each block as an
// independently decodable unit. As each unit starts, the stream raises a
// ProgressEvent (EventNewStream, EventNewBlock, or EventNewMember) carrying a
// per-kind counter and the stream position in bytes. Observers receive events
// synchronously, in registration order.
//
// # Basic Usage
//
// Compress with progress notifications:
//
//	w, err := squish.NewWriter(dst,
//	    squish.WithCompression(squish.ZstdCompression()),
//	    squish.WithBlockSize(4<<20),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w.RegisterObserver(squish.OnProgress(func(e squish.ProgressEvent) error {
//	    fmt.Printf("%s at byte %d\n", e.Kind(), e.Position())
//	    return nil
//	}))
//	_, err = io.Copy(w, src)
//	err = errors.Join(err, w.Close())
//
// Decompress:
//
//	n, err := squish.Decompress(ctx, dst, src, squish.WithCompression(squish.GzipCompression()))
//
// # Observer Failures
//
// An observer error never interrupts compression. Every registered observer
// is notified; failures are logged and returned, joined, from Close (or from
// Decompress). Use errors.Is(err, squish.ErrObserver) to detect them.
package squish
