package upload

import (
	"fmt"
	"io"

	"connectrpc.com/connect"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names for TransportConfig.Compression.
const (
	CompressionIdentity = "identity"
	CompressionGzip     = "gzip"
	CompressionZstd     = "zstd"
	CompressionLZ4      = "lz4"
)

// codec pairs the constructors connect pools per compression name.
type codec struct {
	newDecompressor func() connect.Decompressor
	newCompressor   func() connect.Compressor
}

var codecs = map[string]codec{
	CompressionZstd: {newDecompressor: newZstdDecompressor, newCompressor: newZstdCompressor},
	CompressionLZ4:  {newDecompressor: newLZ4Decompressor, newCompressor: newLZ4Compressor},
}

// compressionOptions returns the client options that send requests with
// the named compression. Gzip ships with connect; zstd and lz4 are
// registered here.
func compressionOptions(name string) ([]connect.ClientOption, error) {
	switch name {
	case "", CompressionIdentity:
		return nil, nil
	case CompressionGzip:
		return []connect.ClientOption{connect.WithSendGzip()}, nil
	}

	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, name)
	}
	return []connect.ClientOption{
		connect.WithAcceptCompression(name, c.newDecompressor, c.newCompressor),
		connect.WithSendCompression(name),
	}, nil
}

// HandlerCompression returns the handler options that let a connect
// server read and write the zstd and lz4 encodings.
func HandlerCompression() []connect.HandlerOption {
	opts := make([]connect.HandlerOption, 0, len(codecs))
	for name, c := range codecs {
		opts = append(opts, connect.WithCompression(name, c.newDecompressor, c.newCompressor))
	}
	return opts
}

func newZstdCompressor() connect.Compressor {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		panic(fmt.Sprintf("upload: creating zstd encoder: %v", err))
	}
	return enc
}

func newZstdDecompressor() connect.Decompressor {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		panic(fmt.Sprintf("upload: creating zstd decoder: %v", err))
	}
	return &zstdDecompressor{Decoder: dec}
}

// zstdDecompressor adapts zstd.Decoder to connect's pooling. connect
// closes a decompressor before returning it to the pool, and a closed
// zstd.Decoder cannot be reset, so Close is a no-op.
type zstdDecompressor struct {
	*zstd.Decoder
}

func (d *zstdDecompressor) Close() error { return nil }

func newLZ4Compressor() connect.Compressor {
	return lz4.NewWriter(nil)
}

func newLZ4Decompressor() connect.Decompressor {
	return &lz4Decompressor{Reader: lz4.NewReader(nil)}
}

type lz4Decompressor struct {
	*lz4.Reader
}

func (d *lz4Decompressor) Reset(r io.Reader) error {
	d.Reader.Reset(r)
	return nil
}

func (d *lz4Decompressor) Close() error { return nil }
