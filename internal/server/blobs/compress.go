package blobs

import (
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// CompressedStore zstd-compresses blobs before handing them to the
// underlying store.
type CompressedStore struct {
	next Store
}

func NewCompressedStore(next Store) *CompressedStore {
	return &CompressedStore{next: next}
}

func (s *CompressedStore) Put(ctx context.Context, key string, data []byte) error {
	return s.next.Put(ctx, key, encoder.EncodeAll(data, make([]byte, 0, len(data))))
}

func (s *CompressedStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	data, err := decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress blob %s: %w", key, err)
	}
	return data, nil
}

func (s *CompressedStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}
