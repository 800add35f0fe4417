package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"guildstore/internal/storage/interfaces"
	"guildstore/internal/structures"
)

type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	out, err := z.decoder.DecodeAll(val, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrMalformedValue, err)
	}
	return out, nil
}

func (z *ZstdCompression) Close() {
	_ = z.encoder.Close()
	z.decoder.Close()
}

func NewZstdCompressor() (interfaces.CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}

// PlainCompression stores values as they are.
type PlainCompression struct{}

func (PlainCompression) Compress(val []byte) ([]byte, error)   { return val, nil }
func (PlainCompression) Decompress(val []byte) ([]byte, error) { return val, nil }
func (PlainCompression) Close()                                {}

// NewCompressorProvider picks zstd when storage.compress is set.
func NewCompressorProvider(conf *structures.Config) (interfaces.CompressorInterface, error) {
	if conf.Storage.Compress {
		return NewZstdCompressor()
	}
	return PlainCompression{}, nil
}
