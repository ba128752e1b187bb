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
	"sort"
	"sync"
)

// KeyEncodingStrategy controls how struct field names are written as
// object keys.
type KeyEncodingStrategy uint8

const (
	// UseDefaultKeyEncoding writes field names (or json tags) as is.
	UseDefaultKeyEncoding KeyEncodingStrategy = iota

	// ConvertToSnakeCase writes camelCase field names as snake_case.
	ConvertToSnakeCase
)

// Encoder serializes typed values to RFC 8259 JSON. Its settings are
// held behind a lock; Marshal may be called from multiple goroutines.
type Encoder struct {
	mu   sync.Mutex
	keys KeyEncodingStrategy
}

// EncoderOption is an encoder option.
type EncoderOption func(e *Encoder) error

// WithKeyEncodingStrategy sets the key naming strategy.
func WithKeyEncodingStrategy(s KeyEncodingStrategy) EncoderOption {
	return func(e *Encoder) error {
		if s > ConvertToSnakeCase {
			return ErrUnknownStrategy
		}
		e.keys = s
		return nil
	}
}

// NewEncoder returns an encoder with the given options applied.
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	e := &Encoder{}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Marshal serializes v.
func (e *Encoder) Marshal(v interface{}) ([]byte, error) {
	return e.AppendMarshal(nil, v)
}

// AppendMarshal serializes v, appending to dst.
func (e *Encoder) AppendMarshal(dst []byte, v interface{}) ([]byte, error) {
	e.mu.Lock()
	snake := e.keys == ConvertToSnakeCase
	e.mu.Unlock()
	return appendReflect(dst, reflect.ValueOf(v), snake)
}

// Marshal serializes v with default settings.
func Marshal(v interface{}) ([]byte, error) {
	return appendReflect(nil, reflect.ValueOf(v), false)
}

func appendReflect(dst []byte, rv reflect.Value, snake bool) ([]byte, error) {
	if !rv.IsValid() {
		return append(dst, "null"...), nil
	}
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return append(dst, "null"...), nil
		}
		return appendReflect(dst, rv.Elem(), snake)

	case reflect.Bool:
		if rv.Bool() {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return appendInt(dst, rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return appendUint(dst, rv.Uint()), nil

	case reflect.Float32, reflect.Float64:
		return appendFloat(dst, rv.Float())

	case reflect.String:
		dst, _ = appendQuoted(dst, []byte(rv.String()))
		return dst, nil

	case reflect.Struct:
		return appendStruct(dst, rv, snake)

	case reflect.Map:
		return appendMap(dst, rv, snake)

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return append(dst, "null"...), nil
			}
			dst, _ = appendQuoted(dst, rv.Bytes())
			return dst, nil
		}
		if rv.IsNil() {
			return append(dst, "null"...), nil
		}
		return appendSequence(dst, rv, snake)

	case reflect.Array:
		return appendSequence(dst, rv, snake)
	}
	return nil, fmt.Errorf("unsupported value kind %s", rv.Kind())
}

func appendStruct(dst []byte, rv reflect.Value, snake bool) ([]byte, error) {
	dst = append(dst, '{')
	fields := cachedFields(rv.Type())
	for i := range fields {
		f := &fields[i]
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, '"')
		if snake {
			dst = camelToSnake(dst, f.name)
		} else {
			dst = escapeBytes(dst, f.key)
		}
		dst = append(dst, '"', ':')
		var err error
		dst, err = appendReflect(dst, fieldByIndex(rv, f.index), snake)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

func appendMap(dst []byte, rv reflect.Value, snake bool) ([]byte, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
	}
	if rv.IsNil() {
		return append(dst, "null"...), nil
	}
	// Deterministic output, like the stdlib.
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	dst = append(dst, '{')
	for i, k := range keys {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst, _ = appendQuoted(dst, []byte(k.String()))
		dst = append(dst, ':')
		var err error
		dst, err = appendReflect(dst, rv.MapIndex(k), snake)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

func appendSequence(dst []byte, rv reflect.Value, snake bool) ([]byte, error) {
	dst = append(dst, '[')
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			dst = append(dst, ',')
		}
		var err error
		dst, err = appendReflect(dst, rv.Index(i), snake)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, ']'), nil
}
