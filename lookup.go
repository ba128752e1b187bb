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
	"bytes"
	"unicode/utf8"
)

// findKey locates key in the object record at objAt and returns the
// key and value record offsets.
//
// hint is a sequential-access accelerator: a key record offset from
// which to resume searching, typically the offset just past the value
// found by the previous lookup. When the end of the child region is
// reached without a match the search wraps around to the first child
// and continues up to the starting point, so out-of-order visits stay
// correct while in-order visits stay O(1) amortized.
//
// With snake enabled the stored keys are snake_case and the search
// key is camelCase; the stored hash covers the raw snake form, so
// hash acceleration is disabled and a normalizing comparator is used.
func findKey(d *description, msg []byte, objAt int32, key []byte, snake bool, hint int32) (keyAt, valAt int32, ok bool) {
	first := objAt + compositeHeaderSize
	end := first + d.childLenAt(objAt)
	if first == end {
		return 0, 0, false
	}
	start := first
	if hint > first && hint < end {
		start = hint
	}
	var h uint32
	if !snake {
		h = fnv1a32(key)
	}

	at := start
	wrapped := false
	for {
		if at >= end {
			if start == first {
				break
			}
			at = first
			wrapped = true
		}
		if wrapped && at >= start {
			break
		}
		kAt := at
		vAt := d.skipRecord(kAt)
		if matchKey(d, msg, kAt, key, snake, h) {
			return kAt, vAt, true
		}
		at = d.skipRecord(vAt)
	}
	return 0, 0, false
}

// matchKey compares the key record at kAt against the search key.
// Hash-bearing unescaped keys short-circuit on length and hash before
// the byte compare; escaped keys and legacy string records in key
// position fall back to length+memcmp of the decoded bytes.
func matchKey(d *description, msg []byte, kAt int32, key []byte, snake bool, h uint32) bool {
	t := d.tagAt(kAt)
	off := d.jsonOffsetAt(kAt)
	length := d.jsonLengthAt(kAt)
	raw := msg[off+1 : off+length-1]

	escaped := t == tagKeyEscaped || t == tagStringEscaped
	if !snake && !escaped {
		if len(raw) != len(key) {
			return false
		}
		if t == tagKey && d.uint32At(kAt+fieldJSONLength+4) != h {
			return false
		}
		return bytes.Equal(raw, key)
	}

	stored := raw
	if escaped {
		var err error
		stored, err = unescape(make([]byte, 0, len(raw)), raw)
		if err != nil {
			return false
		}
	}
	if snake {
		return snakeEqualsCamel(stored, key)
	}
	return bytes.Equal(stored, key)
}

// arrayElement walks the children of the array record at arrAt and
// returns the record offset of element n.
func arrayElement(d *description, arrAt int32, n int32) (int32, bool) {
	if n < 0 || n >= d.memberCountAt(arrAt) {
		return 0, false
	}
	at := arrAt + compositeHeaderSize
	for ; n > 0; n-- {
		at = d.skipRecord(at)
	}
	return at, true
}

// jsonBounds returns the full token span of the record, quotes
// included for strings.
func jsonBounds(d *description, at int32) (off, length int32) {
	return d.jsonOffsetAt(at), d.jsonLengthAt(at)
}

// dataBounds returns the value span with string quotes excluded.
func dataBounds(d *description, at int32) (off, length int32) {
	off, length = jsonBounds(d, at)
	switch d.tagAt(at) {
	case tagString, tagStringEscaped, tagKey, tagKeyEscaped:
		return off + 1, length - 2
	}
	return off, length
}

// stringData decodes the string record at. The data span is copied
// out; escape processing only runs when the record says it must.
func stringData(d *description, msg []byte, at int32) ([]byte, error) {
	off, length := dataBounds(d, at)
	raw := msg[off : off+length]
	switch d.tagAt(at) {
	case tagStringEscaped, tagKeyEscaped:
		return unescape(make([]byte, 0, len(raw)), raw)
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// objectKeys walks an object's child region and returns the decoded
// key strings in source order. Keys that do not decode to valid UTF-8
// are skipped. With snake enabled keys are returned in camelCase.
func objectKeys(d *description, msg []byte, objAt int32, snake bool) ([]string, error) {
	members := d.memberCountAt(objAt)
	out := make([]string, 0, members)
	at := objAt + compositeHeaderSize
	for i := int32(0); i < members; i++ {
		kb, err := stringData(d, msg, at)
		if err != nil {
			return nil, err
		}
		if snake {
			kb = snakeToCamel(make([]byte, 0, len(kb)), kb)
		}
		if utf8.Valid(kb) {
			out = append(out, string(kb))
		}
		at = d.skipRecord(d.skipRecord(at))
	}
	return out, nil
}
