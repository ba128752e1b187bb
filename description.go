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
	"fmt"
	"math"
)

// The index description is an append-only byte vector holding a
// depth-first sequence of records, one per JSON token. Every record
// starts with a type tag; scalar records carry the byte span of the
// token in the message, composite records additionally carry their
// member count and the byte length of their child records.
//
// Record layouts (little-endian i32 fields after the tag byte):
//
//	object/array:   tag, jsonOffset, jsonLength, memberCount, childLen (17 bytes)
//	true/false/null: tag, jsonOffset                                    (5 bytes)
//	string/int/float: tag, jsonOffset, jsonLength                       (9 bytes)
//	object key:      tag, jsonOffset, jsonLength, fnv1aHash             (13 bytes)
//
// Object children alternate key and value records; array children are
// value records. Nested composites recurse in place.
type tag byte

const (
	tagObject        tag = 0x01
	tagArray         tag = 0x02
	tagBoolTrue      tag = 0x03
	tagBoolFalse     tag = 0x04
	tagString        tag = 0x05
	tagStringEscaped tag = 0x06
	tagInteger       tag = 0x07
	tagFloat         tag = 0x08
	tagNull          tag = 0x09
	tagKey           tag = 0x0a
	tagKeyEscaped    tag = 0x0b
)

// Header sizes per tag kind.
const (
	compositeHeaderSize = 17
	literalRecordSize   = 5
	spanRecordSize      = 9
	keyRecordSize       = 13
)

// maxIndexBytes bounds the index so every i32 field stays valid.
// A chain of open composites costs compositeHeaderSize bytes each,
// which is where the nesting budget of MaxInt32/17 comes from.
const maxIndexBytes = math.MaxInt32

// Field offsets within a record, relative to the tag byte.
const (
	fieldJSONOffset = 1
	fieldJSONLength = 5
	fieldMembers    = 9
	fieldChildLen   = 13
)

type description struct {
	buf []byte
}

func (d *description) reset() {
	d.buf = d.buf[:0]
}

func (d *description) size() int {
	return len(d.buf)
}

func (d *description) tagAt(at int32) tag {
	return tag(d.buf[at])
}

func (d *description) int32At(at int32) int32 {
	return int32(binary.LittleEndian.Uint32(d.buf[at:]))
}

func (d *description) uint32At(at int32) uint32 {
	return binary.LittleEndian.Uint32(d.buf[at:])
}

func (d *description) setInt32(at int32, v int32) {
	binary.LittleEndian.PutUint32(d.buf[at:], uint32(v))
}

func (d *description) writeByte(b byte) {
	d.buf = append(d.buf, b)
}

func (d *description) writeInt32(v int32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	d.buf = append(d.buf, tmp[:]...)
}

func (d *description) writeUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	d.buf = append(d.buf, tmp[:]...)
}

// moveWriter reserves a back-patch hole of n zero bytes and returns
// the offset where the hole begins.
func (d *description) moveWriter(n int) int32 {
	at := int32(len(d.buf))
	for i := 0; i < n; i++ {
		d.buf = append(d.buf, 0)
	}
	return at
}

func (d *description) jsonOffsetAt(at int32) int32 {
	return d.int32At(at + fieldJSONOffset)
}

func (d *description) setJSONOffset(at int32, v int32) {
	d.setInt32(at+fieldJSONOffset, v)
}

// jsonLengthAt returns the full token span length for the record at.
// Literal records do not store their length; it follows from the tag.
func (d *description) jsonLengthAt(at int32) int32 {
	switch d.tagAt(at) {
	case tagBoolTrue, tagNull:
		return 4
	case tagBoolFalse:
		return 5
	}
	return d.int32At(at + fieldJSONLength)
}

func (d *description) memberCountAt(at int32) int32 {
	return d.int32At(at + fieldMembers)
}

func (d *description) childLenAt(at int32) int32 {
	return d.int32At(at + fieldChildLen)
}

// skipRecord returns the offset just past the record at the given
// offset, including any children for composite records.
func (d *description) skipRecord(at int32) int32 {
	switch d.tagAt(at) {
	case tagObject, tagArray:
		return at + compositeHeaderSize + d.childLenAt(at)
	case tagBoolTrue, tagBoolFalse, tagNull:
		return at + literalRecordSize
	case tagKey, tagKeyEscaped:
		return at + keyRecordSize
	default:
		return at + spanRecordSize
	}
}

// slice returns a detached copy of the record bytes [from, from+n).
// Used when splicing one document's records into another.
func (d *description) slice(from, n int32) description {
	cp := make([]byte, n)
	copy(cp, d.buf[from:from+n])
	return description{buf: cp}
}

// prepareRewrite grows or shrinks the byte window [at, at+oldSize) to
// newSize, shifting the tail and preserving the remaining bytes.
func (d *description) prepareRewrite(at int32, oldSize, newSize int32) {
	switch {
	case newSize > oldSize:
		d.buf = append(d.buf, make([]byte, newSize-oldSize)...)
		copy(d.buf[at+newSize:], d.buf[at+oldSize:])
	case newSize < oldSize:
		copy(d.buf[at+newSize:], d.buf[at+oldSize:])
		d.buf = d.buf[:int32(len(d.buf))-(oldSize-newSize)]
	}
}

// shiftOffsets rewrites message offsets after the buffer was edited at
// byte position from with a net size change of delta. Records starting
// at or past the edit point move by delta; composites spanning it grow
// or shrink by the same amount.
func (d *description) shiftOffsets(from, delta int32) {
	at := int32(0)
	for at < int32(len(d.buf)) {
		off := d.jsonOffsetAt(at)
		switch d.tagAt(at) {
		case tagObject, tagArray:
			if off >= from {
				d.setJSONOffset(at, off+delta)
			} else if off+d.int32At(at+fieldJSONLength) > from {
				d.setInt32(at+fieldJSONLength, d.int32At(at+fieldJSONLength)+delta)
			}
			at += compositeHeaderSize
		case tagBoolTrue, tagBoolFalse, tagNull:
			if off >= from {
				d.setJSONOffset(at, off+delta)
			}
			at += literalRecordSize
		case tagKey, tagKeyEscaped:
			if off >= from {
				d.setJSONOffset(at, off+delta)
			}
			at += keyRecordSize
		default:
			if off >= from {
				d.setJSONOffset(at, off+delta)
			}
			at += spanRecordSize
		}
	}
}

// advanceAllJSONOffsets relocates every record by delta. Used when a
// detached document is spliced into a parent at a new byte position.
func (d *description) advanceAllJSONOffsets(delta int32) {
	d.shiftOffsets(math.MinInt32, delta)
}

// validate checks the structural invariants of the description against
// the message it describes. Corrupt descriptions are programming
// errors; this is exercised by tests after parses and mutations.
func (d *description) validate(msg []byte) error {
	if len(d.buf) == 0 {
		return fmt.Errorf("empty description")
	}
	end, err := d.validateRecord(0, msg, false)
	if err != nil {
		return err
	}
	if end != int32(len(d.buf)) {
		return fmt.Errorf("trailing description bytes after root: %d != %d", end, len(d.buf))
	}
	return nil
}

func (d *description) validateRecord(at int32, msg []byte, key bool) (int32, error) {
	if at+literalRecordSize > int32(len(d.buf)) {
		return 0, fmt.Errorf("truncated record at %d", at)
	}
	t := d.tagAt(at)
	if key != (t == tagKey || t == tagKeyEscaped) {
		return 0, fmt.Errorf("record %d: tag %#x in wrong position", at, t)
	}
	off := d.jsonOffsetAt(at)
	length := d.jsonLengthAt(at)
	if off < 0 || length < 0 || int(off)+int(length) > len(msg) {
		return 0, fmt.Errorf("record %d: span %d+%d outside message of %d bytes", at, off, length, len(msg))
	}
	switch t {
	case tagObject, tagArray:
		members := d.memberCountAt(at)
		childLen := d.childLenAt(at)
		childEnd := at + compositeHeaderSize + childLen
		if childLen < 0 || childEnd > int32(len(d.buf)) {
			return 0, fmt.Errorf("record %d: children extend beyond description", at)
		}
		child := at + compositeHeaderSize
		for i := int32(0); i < members; i++ {
			var err error
			if t == tagObject {
				if child, err = d.validateRecord(child, msg, true); err != nil {
					return 0, err
				}
			}
			if child, err = d.validateRecord(child, msg, false); err != nil {
				return 0, err
			}
		}
		if child != childEnd {
			return 0, fmt.Errorf("record %d: member count %d does not cover child region %d..%d",
				at, members, child, childEnd)
		}
		return childEnd, nil
	case tagKey, tagKeyEscaped:
		if length < 2 || msg[off] != '"' || msg[off+length-1] != '"' {
			return 0, fmt.Errorf("record %d: key span is not quoted", at)
		}
		if want := fnv1a32(msg[off+1 : off+length-1]); want != d.uint32At(at+fieldJSONLength+4) {
			return 0, fmt.Errorf("record %d: key hash mismatch", at)
		}
		return at + keyRecordSize, nil
	case tagString, tagStringEscaped:
		if length < 2 || msg[off] != '"' || msg[off+length-1] != '"' {
			return 0, fmt.Errorf("record %d: string span is not quoted", at)
		}
		return at + spanRecordSize, nil
	case tagInteger, tagFloat:
		return at + spanRecordSize, nil
	case tagBoolTrue, tagBoolFalse, tagNull:
		return at + literalRecordSize, nil
	}
	return 0, fmt.Errorf("record %d: unknown tag %#x", at, t)
}

// FNV-1a 32 bit. The constants are part of the index format: every
// object key record stores the hash of its raw (pre-unescape) bytes.
const (
	fnvOffsetBasis = 0x811c9dc5
	fnvPrime       = 0x01000193
)

func fnv1a32(b []byte) uint32 {
	h := uint32(fnvOffsetBasis)
	for _, c := range b {
		h = (h ^ uint32(c)) * fnvPrime
	}
	return h
}
