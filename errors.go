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
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by parsing, lookup and decoding.
var (
	// ErrMissingData is returned when the input ends before a value is complete.
	ErrMissingData = errors.New("unexpected end of input")

	// ErrInvalidLiteral is returned when a true/false/null literal is misspelled.
	ErrInvalidLiteral = errors.New("invalid literal")

	// ErrInvalidData is returned when string data cannot be decoded,
	// for example a malformed escape sequence or invalid UTF-8.
	ErrInvalidData = errors.New("invalid string data")

	// ErrInvalidTopLevelObject is returned when a document root is not
	// the composite kind an operation requires.
	ErrInvalidTopLevelObject = errors.New("top level value is not an object")

	// ErrStackOverflow is returned when nesting exceeds the index budget.
	ErrStackOverflow = errors.New("document nesting too deep")

	// ErrMissingKeyedContainer is returned when an object was expected.
	ErrMissingKeyedContainer = errors.New("expected an object")

	// ErrMissingUnkeyedContainer is returned when an array was expected.
	ErrMissingUnkeyedContainer = errors.New("expected an array")

	// ErrMissingValue is returned when a required value is absent or null.
	ErrMissingValue = errors.New("value missing")

	// ErrEndOfArray is returned when an array cursor reads past the last element.
	ErrEndOfArray = errors.New("end of array")

	// ErrUnknownStrategy is returned for unrecognized coder strategies.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrNotFound is returned by lookups for keys or indexes that do not exist.
	ErrNotFound = errors.New("not found")
)

// SyntaxReason describes what the scanner expected when it failed.
type SyntaxReason uint8

const (
	ExpectedValue SyntaxReason = iota
	ExpectedObjectKey
	ExpectedColon
	ExpectedComma
	ExpectedArrayClose
	ExpectedObjectClose
)

func (r SyntaxReason) String() string {
	switch r {
	case ExpectedValue:
		return "expected a value"
	case ExpectedObjectKey:
		return "expected an object key"
	case ExpectedColon:
		return "expected ':'"
	case ExpectedComma:
		return "expected ','"
	case ExpectedArrayClose:
		return "expected ']'"
	case ExpectedObjectClose:
		return "expected '}'"
	}
	return "unexpected token"
}

// SyntaxError is returned for malformed JSON.
// Offset is the byte position of the offending character.
type SyntaxError struct {
	Reason SyntaxReason
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Reason, e.Offset)
}

// TypeConversionError is returned when a numeric value does not fit
// the requested destination type.
type TypeConversionError struct {
	Value string
	To    string
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s", e.Value, e.To)
}

// DecodingError wraps a failure during structural decoding with the
// key path at which it occurred.
type DecodingError struct {
	Expected string
	Path     []string
	Err      error
}

func (e *DecodingError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("decoding %s: %v", e.Expected, e.Err)
	}
	return fmt.Sprintf("decoding %s at %q: %v", e.Expected, strings.Join(e.Path, "."), e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }
