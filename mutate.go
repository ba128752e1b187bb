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

import "math"

// Every mutation edits the message and the index together. The edit
// itself is local; coherence is restored by shifting the message
// offset of every record at or past the edit point by the net byte
// delta, and resizing the composites that span it.
//
// Mutations are initiated on the document root. Nested composites
// read out of a document are detached copies; writing one back
// splices its message bytes and records in whole.

// splice grows or shrinks the window [at, at+oldLen) of b to hold ins.
func splice(b []byte, at, oldLen int32, ins []byte) []byte {
	delta := int32(len(ins)) - oldLen
	switch {
	case delta > 0:
		b = append(b, make([]byte, delta)...)
		copy(b[at+int32(len(ins)):], b[at+oldLen:])
	case delta < 0:
		copy(b[at+int32(len(ins)):], b[at+oldLen:])
		b = b[:int32(len(b))+delta]
	}
	copy(b[at:], ins)
	return b
}

// encodeValue serializes v as it will appear at message position base
// and builds the matching index records. Composite values contribute
// their root span verbatim; their records are relocated to base.
func encodeValue(v Value, base int32) ([]byte, description, error) {
	var recs description
	switch v.kind {
	case KindNull:
		recs.writeByte(byte(tagNull))
		recs.writeInt32(base)
		return []byte("null"), recs, nil
	case KindBool:
		if v.b {
			recs.writeByte(byte(tagBoolTrue))
			recs.writeInt32(base)
			return []byte("true"), recs, nil
		}
		recs.writeByte(byte(tagBoolFalse))
		recs.writeInt32(base)
		return []byte("false"), recs, nil
	case KindInt:
		b := appendInt(nil, v.i)
		recs.writeByte(byte(tagInteger))
		recs.writeInt32(base)
		recs.writeInt32(int32(len(b)))
		return b, recs, nil
	case KindFloat:
		b, err := appendFloat(nil, v.f)
		if err != nil {
			return nil, recs, err
		}
		recs.writeByte(byte(tagFloat))
		recs.writeInt32(base)
		recs.writeInt32(int32(len(b)))
		return b, recs, nil
	case KindString:
		b, escaped := appendQuoted(nil, []byte(v.s))
		t := tagString
		if escaped {
			t = tagStringEscaped
		}
		recs.writeByte(byte(t))
		recs.writeInt32(base)
		recs.writeInt32(int32(len(b)))
		return b, recs, nil
	case KindObject, KindArray:
		src := &v.doc.desc
		rootOff, rootLen := jsonBounds(src, 0)
		b := make([]byte, rootLen)
		copy(b, v.doc.Message[rootOff:rootOff+rootLen])
		recs = src.slice(0, src.skipRecord(0))
		recs.advanceAllJSONOffsets(base - rootOff)
		return b, recs, nil
	}
	return nil, recs, ErrInvalidData
}

// replaceValue rewrites the direct child record at valAt of the root
// composite with a new value.
func (doc *Document) replaceValue(valAt int32, v Value) error {
	d := &doc.desc
	oldRecLen := d.skipRecord(valAt) - valAt
	o, l := jsonBounds(d, valAt)

	nb, recs, err := encodeValue(v, o)
	if err != nil {
		return err
	}
	delta := int32(len(nb)) - l
	d.shiftOffsets(o, delta)
	doc.Message = splice(doc.Message, o, l, nb)

	newRecLen := int32(recs.size())
	d.prepareRewrite(valAt, oldRecLen, newRecLen)
	copy(d.buf[valAt:], recs.buf)
	d.setInt32(fieldChildLen, d.childLenAt(0)+newRecLen-oldRecLen)
	return nil
}

// insertObjectKey appends a key/value pair to the root object,
// splicing the bytes in immediately before the closing brace.
func (doc *Document) insertObjectKey(key string, v Value) error {
	d := &doc.desc
	members := d.memberCountAt(0)
	if members == math.MaxInt32 {
		return ErrStackOverflow
	}
	rootOff, rootLen := jsonBounds(d, 0)
	insertPos := rootOff + rootLen - 1

	var msgIns []byte
	if members > 0 {
		msgIns = append(msgIns, ',')
	}
	keyMsgOff := insertPos + int32(len(msgIns))
	kb, kEscaped := appendQuoted(nil, []byte(key))
	msgIns = append(msgIns, kb...)
	msgIns = append(msgIns, ':')
	valMsgOff := insertPos + int32(len(msgIns))

	vb, vrecs, err := encodeValue(v, valMsgOff)
	if err != nil {
		return err
	}
	msgIns = append(msgIns, vb...)

	var recs description
	kt := tagKey
	if kEscaped {
		kt = tagKeyEscaped
	}
	recs.writeByte(byte(kt))
	recs.writeInt32(keyMsgOff)
	recs.writeInt32(int32(len(kb)))
	recs.writeUint32(fnv1a32(kb[1 : len(kb)-1]))
	recs.buf = append(recs.buf, vrecs.buf...)

	d.shiftOffsets(insertPos, int32(len(msgIns)))
	doc.Message = splice(doc.Message, insertPos, 0, msgIns)

	at := compositeHeaderSize + d.childLenAt(0)
	d.prepareRewrite(int32(at), 0, int32(recs.size()))
	copy(d.buf[at:], recs.buf)
	d.setInt32(fieldMembers, members+1)
	d.setInt32(fieldChildLen, int32(at)-compositeHeaderSize+int32(recs.size()))
	return nil
}

// setObjectKey replaces the value of key, inserting the pair when the
// key is absent.
func (doc *Document) setObjectKey(key string, v Value) error {
	_, valAt, ok := findKey(&doc.desc, doc.Message, 0, []byte(key), false, 0)
	if ok {
		return doc.replaceValue(valAt, v)
	}
	return doc.insertObjectKey(key, v)
}

// removeRecords deletes the index records [firstAt, afterAt) and the
// message bytes [s, e), then re-establishes offset coherence.
// The caller patches the root header counts.
func (doc *Document) removeRecords(firstAt, afterAt, s, e int32) {
	d := &doc.desc
	d.shiftOffsets(s, -(e - s))
	doc.Message = splice(doc.Message, s, e-s, nil)
	d.prepareRewrite(firstAt, afterAt-firstAt, 0)
}

// removeObjectKey deletes a key and its value from the root object.
// The enclosing comma is removed with the pair: the one after it for
// the first pair, the one before it otherwise.
func (doc *Document) removeObjectKey(key string) error {
	d := &doc.desc
	keyAt, valAt, ok := findKey(d, doc.Message, 0, []byte(key), false, 0)
	if !ok {
		return ErrNotFound
	}
	members := d.memberCountAt(0)
	first := int32(compositeHeaderSize)
	after := d.skipRecord(valAt)

	valOff, valLen := jsonBounds(d, valAt)
	valEnd := valOff + valLen
	var s, e int32
	switch {
	case members == 1:
		s, e = d.jsonOffsetAt(keyAt), valEnd
	case keyAt == first:
		s, e = d.jsonOffsetAt(keyAt), d.jsonOffsetAt(after)
	default:
		prevVal := int32(-1)
		for at := first; at != keyAt; {
			prevVal = d.skipRecord(at)
			at = d.skipRecord(prevVal)
		}
		s = d.jsonOffsetAt(prevVal) + d.jsonLengthAt(prevVal)
		e = valEnd
	}
	doc.removeRecords(keyAt, after, s, e)
	d.setInt32(fieldMembers, members-1)
	d.setInt32(fieldChildLen, d.childLenAt(0)-(after-keyAt))
	return nil
}

// removeArrayElement deletes element i from the root array.
func (doc *Document) removeArrayElement(i int) error {
	d := &doc.desc
	elemAt, ok := arrayElement(d, 0, int32(i))
	if !ok {
		return ErrNotFound
	}
	members := d.memberCountAt(0)
	after := d.skipRecord(elemAt)

	elemOff, elemLen := jsonBounds(d, elemAt)
	elemEnd := elemOff + elemLen
	var s, e int32
	switch {
	case members == 1:
		s, e = elemOff, elemEnd
	case i == 0:
		s, e = elemOff, d.jsonOffsetAt(after)
	default:
		prevAt, _ := arrayElement(d, 0, int32(i-1))
		s = d.jsonOffsetAt(prevAt) + d.jsonLengthAt(prevAt)
		e = elemEnd
	}
	doc.removeRecords(elemAt, after, s, e)
	d.setInt32(fieldMembers, members-1)
	d.setInt32(fieldChildLen, d.childLenAt(0)-(after-elemAt))
	return nil
}

// appendArrayElement splices a new element in before the closing
// bracket of the root array.
func (doc *Document) appendArrayElement(v Value) error {
	d := &doc.desc
	members := d.memberCountAt(0)
	if members == math.MaxInt32 {
		return ErrStackOverflow
	}
	rootOff, rootLen := jsonBounds(d, 0)
	insertPos := rootOff + rootLen - 1

	var msgIns []byte
	if members > 0 {
		msgIns = append(msgIns, ',')
	}
	valMsgOff := insertPos + int32(len(msgIns))
	vb, recs, err := encodeValue(v, valMsgOff)
	if err != nil {
		return err
	}
	msgIns = append(msgIns, vb...)

	d.shiftOffsets(insertPos, int32(len(msgIns)))
	doc.Message = splice(doc.Message, insertPos, 0, msgIns)

	at := compositeHeaderSize + d.childLenAt(0)
	d.prepareRewrite(int32(at), 0, int32(recs.size()))
	copy(d.buf[at:], recs.buf)
	d.setInt32(fieldMembers, members+1)
	d.setInt32(fieldChildLen, int32(at)-compositeHeaderSize+int32(recs.size()))
	return nil
}
