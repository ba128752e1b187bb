/*
 * MinIO Cloud Storage, (C) 2020 MinIO, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lazyjson

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
)

const serializedVersion = 1

// Serializer persists parsed documents and reads them back, so an
// index can be cached next to the JSON blob it describes instead of
// being rebuilt on every load.
// A Serializer can be reused, but not used concurrently.
type Serializer struct {
	comp uint8

	zenc *zstd.Encoder
	zdec *zstd.Decoder
}

// NewSerializer will create and initialize a Serializer.
func NewSerializer() *Serializer {
	var s Serializer
	s.CompressMode(CompressDefault)
	return &s
}

// CompressMode is the level of compression applied to the blocks.
type CompressMode uint8

const (
	// CompressNone no compression whatsoever.
	CompressNone CompressMode = iota

	// CompressFast will apply light compression.
	CompressFast

	// CompressDefault balances speed and output size.
	CompressDefault

	// CompressBest trades speed for the smallest output.
	CompressBest
)

const (
	blockTypeUncompressed = iota
	blockTypeS2
	blockTypeZstd
)

// CompressMode sets the block compression.
func (s *Serializer) CompressMode(c CompressMode) {
	switch c {
	case CompressNone:
		s.comp = blockTypeUncompressed
	case CompressFast, CompressDefault:
		s.comp = blockTypeS2
	case CompressBest:
		s.comp = blockTypeZstd
	default:
		panic("unknown compression mode")
	}
}

// Serialize the document and return the data.
// An optional destination can be provided.
func (s *Serializer) Serialize(dst []byte, doc *Document) []byte {
	// Header: version, block type, raw sizes.
	var tmp [binary.MaxVarintLen64]byte
	dst = append(dst, serializedVersion, s.comp)
	dst = append(dst, tmp[:binary.PutUvarint(tmp[:], uint64(len(doc.Message)))]...)
	dst = append(dst, tmp[:binary.PutUvarint(tmp[:], uint64(doc.desc.size()))]...)

	dst = s.serializeBlock(dst, doc.Message)
	dst = s.serializeBlock(dst, doc.desc.buf)
	return dst
}

// serializeBlock writes one content-checksummed block.
func (s *Serializer) serializeBlock(dst, raw []byte) []byte {
	var comp []byte
	switch s.comp {
	case blockTypeUncompressed:
		comp = raw
	case blockTypeS2:
		comp = s2.Encode(nil, raw)
	case blockTypeZstd:
		if s.zenc == nil {
			s.zenc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		}
		comp = s.zenc.EncodeAll(raw, nil)
	}
	var tmp [binary.MaxVarintLen64]byte
	dst = append(dst, tmp[:binary.PutUvarint(tmp[:], uint64(len(comp)))]...)
	dst = binary.LittleEndian.AppendUint64(dst, xxh3.Hash(raw))
	return append(dst, comp...)
}

// Deserialize restores a document from data produced by Serialize.
// A previously parsed document can be supplied to reuse allocations.
func (s *Serializer) Deserialize(b []byte, reuse *Document) (*Document, error) {
	if len(b) < 2 {
		return nil, ErrMissingData
	}
	if b[0] != serializedVersion {
		return nil, fmt.Errorf("unknown serialized version %d", b[0])
	}
	comp := b[1]
	b = b[2:]

	msgLen, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, ErrMissingData
	}
	b = b[n:]
	indexLen, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, ErrMissingData
	}
	b = b[n:]

	doc := reuse
	if doc == nil {
		doc = &Document{}
	}
	var err error
	doc.Message, b, err = deserializeBlock(s, comp, b, doc.Message[:0], int(msgLen))
	if err != nil {
		return nil, fmt.Errorf("message block: %w", err)
	}
	doc.desc.buf, _, err = deserializeBlock(s, comp, b, doc.desc.buf[:0], int(indexLen))
	if err != nil {
		return nil, fmt.Errorf("index block: %w", err)
	}
	return doc, nil
}

func deserializeBlock(s *Serializer, comp uint8, b, dst []byte, rawLen int) ([]byte, []byte, error) {
	compLen, n := binary.Uvarint(b)
	if n <= 0 || len(b) < n+8+int(compLen) {
		return nil, nil, ErrMissingData
	}
	b = b[n:]
	want := binary.LittleEndian.Uint64(b)
	b = b[8:]
	block := b[:compLen]
	b = b[compLen:]

	var raw []byte
	var err error
	switch comp {
	case blockTypeUncompressed:
		raw = append(dst, block...)
	case blockTypeS2:
		raw, err = s2.Decode(dst, block)
	case blockTypeZstd:
		if s.zdec == nil {
			s.zdec, _ = zstd.NewReader(nil)
		}
		raw, err = s.zdec.DecodeAll(block, dst)
	default:
		return nil, nil, errors.New("unknown block type")
	}
	if err != nil {
		return nil, nil, err
	}
	if len(raw) != rawLen {
		return nil, nil, fmt.Errorf("block size mismatch: %d != %d", len(raw), rawLen)
	}
	if xxh3.Hash(raw) != want {
		return nil, nil, errors.New("block checksum mismatch")
	}
	return raw, b, nil
}
