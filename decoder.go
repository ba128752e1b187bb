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
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// KeyDecodingStrategy controls how struct field names are matched
// against object keys.
type KeyDecodingStrategy uint8

const (
	// UseDefaultKeys matches field names (or json tags) byte for byte.
	UseDefaultKeys KeyDecodingStrategy = iota

	// ConvertFromSnakeCase matches camelCase field names against
	// snake_case object keys.
	ConvertFromSnakeCase
)

// NilDecodingStrategy controls how missing keys and null tokens are
// treated for nilable destinations (pointers, slices, maps and
// interfaces).
type NilDecodingStrategy uint8

const (
	// NilDecodingDefault requires every mapped key to be present;
	// a null token satisfies nilable destinations.
	NilDecodingDefault NilDecodingStrategy = iota

	// DecodeNilForKeyNotFound lets missing keys satisfy nilable
	// destinations, decoding them to their empty state.
	DecodeNilForKeyNotFound

	// TreatNilValuesAsMissing makes a null token for a nilable
	// destination an error rather than the empty state.
	TreatNilValuesAsMissing
)

// Decoder decodes JSON into typed values through the index.
// Its settings are held behind a lock; Decode may be called from
// multiple goroutines, each call parsing into its own document.
type Decoder struct {
	mu   sync.Mutex
	keys KeyDecodingStrategy
	nils NilDecodingStrategy
}

// DecoderOption is a decoder option.
type DecoderOption func(d *Decoder) error

// WithKeyDecodingStrategy sets the key matching strategy.
func WithKeyDecodingStrategy(s KeyDecodingStrategy) DecoderOption {
	return func(d *Decoder) error {
		if s > ConvertFromSnakeCase {
			return ErrUnknownStrategy
		}
		d.keys = s
		return nil
	}
}

// WithNilDecodingStrategy sets the missing-key and null handling.
func WithNilDecodingStrategy(s NilDecodingStrategy) DecoderOption {
	return func(d *Decoder) error {
		if s > TreatNilValuesAsMissing {
			return ErrUnknownStrategy
		}
		d.nils = s
		return nil
	}
}

// NewDecoder returns a decoder with the given options applied.
func NewDecoder(opts ...DecoderOption) (*Decoder, error) {
	d := &Decoder{}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Decode parses b and populates the value pointed to by v.
func (d *Decoder) Decode(b []byte, v interface{}) error {
	d.mu.Lock()
	keys, nils := d.keys, d.nils
	d.mu.Unlock()

	doc, err := Parse(b, nil)
	if err != nil {
		return err
	}
	st := decodeState{doc: doc, snake: keys == ConvertFromSnakeCase, nils: nils}
	return st.decodeRoot(v)
}

// Unmarshal parses b and populates the value pointed to by v using
// default strategies.
func Unmarshal(b []byte, v interface{}) error {
	doc, err := Parse(b, nil)
	if err != nil {
		return err
	}
	return doc.Decode(v)
}

// Decode populates the value pointed to by v from an already parsed
// document using default strategies.
func (doc *Document) Decode(v interface{}) error {
	st := decodeState{doc: doc}
	return st.decodeRoot(v)
}

// decodeState drives one decode session: it owns the document, the
// strategies and the key path used for diagnostics.
type decodeState struct {
	doc   *Document
	snake bool
	nils  NilDecodingStrategy
	path  []string
}

func (st *decodeState) errorf(expected string, err error) error {
	return &DecodingError{
		Expected: expected,
		Path:     append([]string(nil), st.path...),
		Err:      err,
	}
}

func (st *decodeState) decodeRoot(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("decode destination must be a non-nil pointer, got %T", v)
	}
	elem := rv.Elem()
	if isKeyedKind(elem.Kind()) && st.doc.desc.tagAt(0) != tagObject {
		return ErrInvalidTopLevelObject
	}
	return st.decodeValue(0, elem)
}

func isKeyedKind(k reflect.Kind) bool {
	return k == reflect.Struct || k == reflect.Map
}

func isNilableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
	return false
}

// decodeValue coerces the record at the given offset into rv.
func (st *decodeState) decodeValue(at int32, rv reflect.Value) error {
	d := &st.doc.desc
	t := d.tagAt(at)

	if t == tagNull {
		if !isNilableKind(rv.Kind()) {
			return st.errorf(rv.Type().String(), ErrMissingValue)
		}
		if st.nils == TreatNilValuesAsMissing {
			return st.errorf(rv.Type().String(), ErrMissingValue)
		}
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}

	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return st.decodeValue(at, rv.Elem())

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return st.errorf(rv.Type().String(), ErrInvalidData)
		}
		v, err := st.doc.interfaceAt(at)
		if err != nil {
			return st.errorf("interface{}", err)
		}
		rv.Set(reflect.ValueOf(v))
		return nil

	case reflect.Bool:
		switch t {
		case tagBoolTrue:
			rv.SetBool(true)
		case tagBoolFalse:
			rv.SetBool(false)
		default:
			return st.errorf("bool", fmt.Errorf("found %s", kindName(t)))
		}
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if t != tagInteger {
			return st.errorf(rv.Type().String(), fmt.Errorf("found %s", kindName(t)))
		}
		off, length := jsonBounds(d, at)
		raw := st.doc.Message[off : off+length]
		v, ok := parseInteger(raw)
		if !ok || rv.OverflowInt(v) {
			return st.errorf(rv.Type().String(),
				&TypeConversionError{Value: string(raw), To: rv.Type().String()})
		}
		rv.SetInt(v)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if t != tagInteger {
			return st.errorf(rv.Type().String(), fmt.Errorf("found %s", kindName(t)))
		}
		off, length := jsonBounds(d, at)
		raw := st.doc.Message[off : off+length]
		v, ok := parseInteger(raw)
		if !ok || v < 0 || rv.OverflowUint(uint64(v)) {
			return st.errorf(rv.Type().String(),
				&TypeConversionError{Value: string(raw), To: rv.Type().String()})
		}
		rv.SetUint(uint64(v))
		return nil

	case reflect.Float32, reflect.Float64:
		if t != tagInteger && t != tagFloat {
			return st.errorf(rv.Type().String(), fmt.Errorf("found %s", kindName(t)))
		}
		off, length := jsonBounds(d, at)
		raw := st.doc.Message[off : off+length]
		v, err := parseFloat(raw)
		if err != nil {
			return st.errorf(rv.Type().String(), err)
		}
		if rv.OverflowFloat(v) {
			return st.errorf(rv.Type().String(),
				&TypeConversionError{Value: string(raw), To: rv.Type().String()})
		}
		rv.SetFloat(v)
		return nil

	case reflect.String:
		if t != tagString && t != tagStringEscaped {
			return st.errorf("string", fmt.Errorf("found %s", kindName(t)))
		}
		b, err := stringData(d, st.doc.Message, at)
		if err != nil {
			return st.errorf("string", err)
		}
		rv.SetString(string(b))
		return nil

	case reflect.Struct:
		if t != tagObject {
			return st.errorf(rv.Type().String(), ErrMissingKeyedContainer)
		}
		return st.decodeStruct(at, rv)

	case reflect.Map:
		if t != tagObject {
			return st.errorf(rv.Type().String(), ErrMissingKeyedContainer)
		}
		return st.decodeMap(at, rv)

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			// []byte takes the raw string bytes.
			if t != tagString && t != tagStringEscaped {
				return st.errorf("[]byte", fmt.Errorf("found %s", kindName(t)))
			}
			b, err := stringData(d, st.doc.Message, at)
			if err != nil {
				return st.errorf("[]byte", err)
			}
			rv.SetBytes(b)
			return nil
		}
		if t != tagArray {
			return st.errorf(rv.Type().String(), ErrMissingUnkeyedContainer)
		}
		return st.decodeSlice(at, rv)

	case reflect.Array:
		if t != tagArray {
			return st.errorf(rv.Type().String(), ErrMissingUnkeyedContainer)
		}
		return st.decodeFixedArray(at, rv)
	}
	return st.errorf(rv.Type().String(), fmt.Errorf("unsupported destination kind %s", rv.Kind()))
}

// decodeStruct visits the struct's fields in order, carrying a
// sequential-access hint from one lookup to the next so documents
// whose keys appear in field order resolve in a single pass.
func (st *decodeState) decodeStruct(at int32, rv reflect.Value) error {
	d := &st.doc.desc
	fields := cachedFields(rv.Type())
	hint := int32(0)
	for i := range fields {
		f := &fields[i]
		_, valAt, ok := findKey(d, st.doc.Message, at, f.key, st.snake, hint)
		fv := fieldByIndex(rv, f.index)
		if !ok {
			if st.nils == DecodeNilForKeyNotFound && isNilableKind(fv.Kind()) {
				fv.Set(reflect.Zero(fv.Type()))
				continue
			}
			st.path = append(st.path, f.name)
			err := st.errorf(fv.Type().String(), fmt.Errorf("%w: key %q", ErrMissingValue, f.name))
			st.path = st.path[:len(st.path)-1]
			return err
		}
		hint = d.skipRecord(valAt)

		st.path = append(st.path, f.name)
		err := st.decodeValue(valAt, fv)
		st.path = st.path[:len(st.path)-1]
		if err != nil {
			return err
		}
	}
	return nil
}

func (st *decodeState) decodeMap(at int32, rv reflect.Value) error {
	mt := rv.Type()
	if mt.Key().Kind() != reflect.String {
		return st.errorf(mt.String(), fmt.Errorf("unsupported map key type %s", mt.Key()))
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(mt, 0))
	}
	d := &st.doc.desc
	members := d.memberCountAt(at)
	child := at + compositeHeaderSize
	for i := int32(0); i < members; i++ {
		kb, err := stringData(d, st.doc.Message, child)
		if err != nil {
			return st.errorf(mt.String(), err)
		}
		child = d.skipRecord(child)

		ev := reflect.New(mt.Elem()).Elem()
		st.path = append(st.path, string(kb))
		err = st.decodeValue(child, ev)
		st.path = st.path[:len(st.path)-1]
		if err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(string(kb)).Convert(mt.Key()), ev)
		child = d.skipRecord(child)
	}
	return nil
}

func (st *decodeState) decodeSlice(at int32, rv reflect.Value) error {
	cur := st.arrayCursor(at)
	n := int(st.doc.desc.memberCountAt(at))
	out := reflect.MakeSlice(rv.Type(), n, n)
	for i := 0; i < n; i++ {
		st.path = append(st.path, fmt.Sprintf("[%d]", i))
		err := cur.decode(out.Index(i))
		st.path = st.path[:len(st.path)-1]
		if err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func (st *decodeState) decodeFixedArray(at int32, rv reflect.Value) error {
	cur := st.arrayCursor(at)
	for i := 0; i < rv.Len(); i++ {
		if cur.isAtEnd() {
			// Remaining elements keep their zero value.
			rv.Index(i).Set(reflect.Zero(rv.Type().Elem()))
			continue
		}
		st.path = append(st.path, fmt.Sprintf("[%d]", i))
		err := cur.decode(rv.Index(i))
		st.path = st.path[:len(st.path)-1]
		if err != nil {
			return err
		}
	}
	return nil
}

// arrayCursor consumes one element record at a time.
type arrayCursor struct {
	st   *decodeState
	at   int32
	left int32
}

func (st *decodeState) arrayCursor(at int32) arrayCursor {
	return arrayCursor{
		st:   st,
		at:   at + compositeHeaderSize,
		left: st.doc.desc.memberCountAt(at),
	}
}

func (c *arrayCursor) isAtEnd() bool {
	return c.left == 0
}

func (c *arrayCursor) decode(rv reflect.Value) error {
	if c.isAtEnd() {
		return ErrEndOfArray
	}
	err := c.st.decodeValue(c.at, rv)
	c.at = c.st.doc.desc.skipRecord(c.at)
	c.left--
	return err
}

// decodeNil consumes the next element if it is a null token.
func (c *arrayCursor) decodeNil() (bool, error) {
	if c.isAtEnd() {
		return false, ErrEndOfArray
	}
	if c.st.doc.desc.tagAt(c.at) != tagNull {
		return false, nil
	}
	c.at = c.st.doc.desc.skipRecord(c.at)
	c.left--
	return true, nil
}

func kindName(t tag) string {
	switch t {
	case tagObject:
		return "object"
	case tagArray:
		return "array"
	case tagString, tagStringEscaped:
		return "string"
	case tagInteger:
		return "integer"
	case tagFloat:
		return "float"
	case tagBoolTrue, tagBoolFalse:
		return "bool"
	case tagNull:
		return "null"
	}
	return "(invalid)"
}

// structField is one mapped field of a cached struct plan.
type structField struct {
	name  string
	key   []byte
	index []int
}

var fieldCache sync.Map // reflect.Type -> []structField

// cachedFields returns the decode plan for a struct type, flattening
// untagged anonymous struct fields the way encoding/json does.
func cachedFields(t reflect.Type) []structField {
	if v, ok := fieldCache.Load(t); ok {
		return v.([]structField)
	}
	fields := buildFields(t, nil)
	fieldCache.Store(t, fields)
	return fields
}

func buildFields(t reflect.Type, index []int) []structField {
	var out []structField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			out = append(out, buildFields(f.Type, append(index, i))...)
			continue
		}
		if f.PkgPath != "" {
			// Unexported.
			continue
		}
		if name == "" {
			name = f.Name
		}
		idx := make([]int, 0, len(index)+1)
		idx = append(append(idx, index...), i)
		out = append(out, structField{name: name, key: []byte(name), index: idx})
	}
	return out
}

func fieldByIndex(rv reflect.Value, index []int) reflect.Value {
	for _, i := range index {
		rv = rv.Field(i)
	}
	return rv
}
