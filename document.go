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

// Package lazyjson is a lazy, zero-copy JSON library. Parsing builds
// a compact binary index over the input buffer instead of an object
// tree; lookups, typed decoding and in-place edits all resolve
// against the original bytes through that index.
package lazyjson

import (
	"fmt"
)

// maxInputBytes caps the input so every index field stays within i32.
// The densest input is a run of empty composites: 17 index bytes per
// 2 message bytes.
const maxInputBytes = (maxIndexBytes / compositeHeaderSize) * 2

// Document is a parsed JSON value: the original message plus the
// index description built over it in a single forward pass. All reads
// resolve lazily against the message through the index; no
// intermediate tree is ever materialized.
type Document struct {
	// Message is the JSON input. It is aliased, not copied, unless
	// WithCopyBuffer was set; mutations through the Object and Array
	// facades rewrite it in place.
	Message []byte

	desc description
}

// Parse a block of data and return the parsed document.
// A previously parsed document can be supplied to reuse allocations.
func Parse(b []byte, reuse *Document, opts ...ParserOption) (*Document, error) {
	if len(b) > maxInputBytes {
		return nil, ErrStackOverflow
	}
	var cfg parserConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	doc := reuse
	if doc == nil {
		doc = &Document{}
	}
	doc.desc.reset()
	if cfg.copyBuffer {
		doc.Message = append(doc.Message[:0], b...)
	} else {
		doc.Message = b
	}

	s := scanner{c: cursor{buf: doc.Message}, dst: &builder{desc: &doc.desc}}
	if err := s.scanValue(); err != nil {
		return nil, err
	}
	if err := s.c.skipWhitespace(); err == nil {
		return nil, fmt.Errorf("trailing characters after top-level value at offset %d", s.c.off)
	}
	return doc, nil
}

// NewObjectDocument returns a document holding an empty object.
func NewObjectDocument() *Document {
	doc := &Document{Message: []byte("{}")}
	doc.desc.writeByte(byte(tagObject))
	doc.desc.writeInt32(0)
	doc.desc.writeInt32(2)
	doc.desc.writeInt32(0)
	doc.desc.writeInt32(0)
	return doc
}

// NewArrayDocument returns a document holding an empty array.
func NewArrayDocument() *Document {
	doc := &Document{Message: []byte("[]")}
	doc.desc.writeByte(byte(tagArray))
	doc.desc.writeInt32(0)
	doc.desc.writeInt32(2)
	doc.desc.writeInt32(0)
	doc.desc.writeInt32(0)
	return doc
}

// Object returns the root as an object facade.
func (doc *Document) Object() (*Object, error) {
	if doc.desc.tagAt(0) != tagObject {
		return nil, ErrMissingKeyedContainer
	}
	return &Object{doc: doc}, nil
}

// Array returns the root as an array facade.
func (doc *Document) Array() (*Array, error) {
	if doc.desc.tagAt(0) != tagArray {
		return nil, ErrMissingUnkeyedContainer
	}
	return &Array{doc: doc}, nil
}

// MarshalJSON re-serializes the document by walking the index.
// Unescaped string and number spans are copied from the message
// verbatim; escaped strings are decoded and re-encoded, which
// normalizes \/ to / and resolves \u escapes.
func (doc *Document) MarshalJSON() ([]byte, error) {
	return doc.appendRecordJSON(nil, 0)
}

func (doc *Document) appendRecordJSON(dst []byte, at int32) ([]byte, error) {
	d := &doc.desc
	switch d.tagAt(at) {
	case tagObject:
		dst = append(dst, '{')
		members := d.memberCountAt(at)
		child := at + compositeHeaderSize
		for i := int32(0); i < members; i++ {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = doc.appendRecordJSON(dst, child); err != nil {
				return nil, err
			}
			child = d.skipRecord(child)
			dst = append(dst, ':')
			if dst, err = doc.appendRecordJSON(dst, child); err != nil {
				return nil, err
			}
			child = d.skipRecord(child)
		}
		return append(dst, '}'), nil
	case tagArray:
		dst = append(dst, '[')
		members := d.memberCountAt(at)
		child := at + compositeHeaderSize
		for i := int32(0); i < members; i++ {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = doc.appendRecordJSON(dst, child); err != nil {
				return nil, err
			}
			child = d.skipRecord(child)
		}
		return append(dst, ']'), nil
	case tagStringEscaped, tagKeyEscaped:
		off, length := dataBounds(d, at)
		decoded, err := unescape(nil, doc.Message[off:off+length])
		if err != nil {
			return nil, err
		}
		dst, _ = appendQuoted(dst, decoded)
		return dst, nil
	case tagBoolTrue:
		return append(dst, "true"...), nil
	case tagBoolFalse:
		return append(dst, "false"...), nil
	case tagNull:
		return append(dst, "null"...), nil
	default:
		// Clean strings, keys and numbers are copied verbatim.
		off, length := jsonBounds(d, at)
		return append(dst, doc.Message[off:off+length]...), nil
	}
}

// Interface materializes the document as stdlib-shaped values:
// map[string]interface{}, []interface{}, string, int64, float64,
// bool and nil.
func (doc *Document) Interface() (interface{}, error) {
	return doc.interfaceAt(0)
}

func (doc *Document) interfaceAt(at int32) (interface{}, error) {
	d := &doc.desc
	switch d.tagAt(at) {
	case tagObject:
		members := d.memberCountAt(at)
		m := make(map[string]interface{}, members)
		child := at + compositeHeaderSize
		for i := int32(0); i < members; i++ {
			kb, err := stringData(d, doc.Message, child)
			if err != nil {
				return nil, err
			}
			child = d.skipRecord(child)
			v, err := doc.interfaceAt(child)
			if err != nil {
				return nil, err
			}
			m[string(kb)] = v
			child = d.skipRecord(child)
		}
		return m, nil
	case tagArray:
		members := d.memberCountAt(at)
		a := make([]interface{}, 0, members)
		child := at + compositeHeaderSize
		for i := int32(0); i < members; i++ {
			v, err := doc.interfaceAt(child)
			if err != nil {
				return nil, err
			}
			a = append(a, v)
			child = d.skipRecord(child)
		}
		return a, nil
	case tagString, tagStringEscaped:
		b, err := stringData(d, doc.Message, at)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case tagInteger:
		off, length := jsonBounds(d, at)
		if v, ok := parseInteger(doc.Message[off : off+length]); ok {
			return v, nil
		}
		// Out of int64 range, fall through to float.
		return parseFloat(doc.Message[off : off+length])
	case tagFloat:
		off, length := jsonBounds(d, at)
		return parseFloat(doc.Message[off : off+length])
	case tagBoolTrue:
		return true, nil
	case tagBoolFalse:
		return false, nil
	case tagNull:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown index record %#x", d.tagAt(at))
}

// valueAt converts the record at the given offset to a Value.
// Composite records are detached into documents of their own so they
// can be edited and spliced back.
func (doc *Document) valueAt(at int32) (Value, error) {
	d := &doc.desc
	switch d.tagAt(at) {
	case tagObject, tagArray:
		return Value{kind: kindFor(d.tagAt(at)), doc: doc.detach(at)}, nil
	case tagString, tagStringEscaped:
		b, err := stringData(d, doc.Message, at)
		if err != nil {
			return Value{}, err
		}
		return String(string(b)), nil
	case tagInteger:
		off, length := jsonBounds(d, at)
		v, ok := parseInteger(doc.Message[off : off+length])
		if !ok {
			f, err := parseFloat(doc.Message[off : off+length])
			if err != nil {
				return Value{}, err
			}
			return Float(f), nil
		}
		return Int(v), nil
	case tagFloat:
		off, length := jsonBounds(d, at)
		f, err := parseFloat(doc.Message[off : off+length])
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case tagBoolTrue:
		return Bool(true), nil
	case tagBoolFalse:
		return Bool(false), nil
	case tagNull:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unknown index record %#x", d.tagAt(at))
}

func kindFor(t tag) Kind {
	if t == tagObject {
		return KindObject
	}
	return KindArray
}

// detach copies the record at the given offset into a document of its
// own: the record bytes are sliced out of the index and relocated to
// a message containing just the value's span.
func (doc *Document) detach(at int32) *Document {
	recLen := doc.desc.skipRecord(at) - at
	off, length := jsonBounds(&doc.desc, at)

	out := &Document{Message: make([]byte, length)}
	copy(out.Message, doc.Message[off:off+length])
	out.desc = doc.desc.slice(at, recLen)
	out.desc.advanceAllJSONOffsets(-off)
	return out
}
