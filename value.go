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

// Kind is the dynamic type of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindObject
	KindArray
)

// String returns the kind as a string.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "(invalid)"
}

// Value is a tagged variant holding any JSON value. Scalars are held
// directly; objects and arrays are held as documents of their own and
// spliced in whole when written into another document.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	doc  *Document
}

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a JSON boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a JSON integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a JSON number value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a JSON string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Kind returns the dynamic type of the value.
func (v Value) Kind() Kind { return v.kind }

// BoolVal returns the boolean payload.
func (v Value) BoolVal() (bool, bool) { return v.b, v.kind == KindBool }

// IntVal returns the integer payload.
func (v Value) IntVal() (int64, bool) { return v.i, v.kind == KindInt }

// FloatVal returns the number payload. Integers convert.
func (v Value) FloatVal() (float64, bool) {
	if v.kind == KindInt {
		return float64(v.i), true
	}
	return v.f, v.kind == KindFloat
}

// StringVal returns the string payload.
func (v Value) StringVal() (string, bool) { return v.s, v.kind == KindString }

// Object returns the object payload as a facade.
func (v Value) Object() (*Object, error) {
	if v.kind != KindObject {
		return nil, ErrMissingKeyedContainer
	}
	return v.doc.Object()
}

// Array returns the array payload as a facade.
func (v Value) Array() (*Array, error) {
	if v.kind != KindArray {
		return nil, ErrMissingUnkeyedContainer
	}
	return v.doc.Array()
}

// Interface materializes the value as stdlib-shaped data.
func (v Value) Interface() (interface{}, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.b, nil
	case KindInt:
		return v.i, nil
	case KindFloat:
		return v.f, nil
	case KindString:
		return v.s, nil
	case KindObject, KindArray:
		return v.doc.Interface()
	}
	return nil, ErrInvalidData
}

// MarshalJSON serializes the value.
func (v Value) MarshalJSON() ([]byte, error) {
	return appendValueJSON(nil, v)
}

// appendValueJSON serializes v to dst. Composite values re-serialize
// their backing document, which drops any interior whitespace.
func appendValueJSON(dst []byte, v Value) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...), nil
	case KindBool:
		if v.b {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case KindInt:
		return appendInt(dst, v.i), nil
	case KindFloat:
		return appendFloat(dst, v.f)
	case KindString:
		dst, _ = appendQuoted(dst, []byte(v.s))
		return dst, nil
	case KindObject, KindArray:
		return v.doc.appendRecordJSON(dst, 0)
	}
	return nil, ErrInvalidData
}
