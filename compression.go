package squish

import (
	"github.com/meigma/squish/core"
	"github.com/meigma/squish/internal/codec"
)

// Compression creates compressors and decompressors for one codec.
// Re-exported from core package, allowing custom implementations.
//
// Use GzipCompression or ZstdCompression for built-in implementations.
type Compression = core.Compression

// CompressWriter compresses everything written to it and reports milestones.
type CompressWriter = core.CompressWriter

// Decoder decompresses a source and reports milestones.
type Decoder = core.Decoder

// DefaultBlockSize is the uncompressed size of each block when none is configured.
const DefaultBlockSize = core.DefaultBlockSize

// GzipCompression returns gzip compression (default).
// Each block is written as its own gzip member.
func GzipCompression() Compression {
	return codec.Gzip()
}

// ZstdCompression returns zstd compression.
// Each block is written as its own zstd frame.
func ZstdCompression() Compression {
	return codec.Zstd()
}

// CompressionByName returns the compression registered under a name or
// file extension ("gzip", "gz", "zstd", "zst").
func CompressionByName(name string) (Compression, error) {
	return codec.ByName(name)
}

// CompressionNames returns the names of the built-in compressions.
func CompressionNames() []string {
	return codec.Names()
}
