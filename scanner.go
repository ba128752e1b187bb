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

import "encoding/binary"

// compositeCtx is handed out when a composite opens and returned when
// it closes, so the destination can back-patch the header it reserved.
type compositeCtx struct {
	header     int32
	firstChild int32
}

// tokenDestination receives tokens as the scanner recognizes them.
// The index builder is the only destination used by this package.
// Offsets are byte positions in the input; end offsets are exclusive.
type tokenDestination interface {
	stringFound(start, length int32, escaped bool)
	objectKeyFound(start, length int32, escaped bool, hash uint32)
	numberFound(start, end int32, isInteger bool)
	booleanTrueFound(start int32)
	booleanFalseFound(start int32)
	nullFound(start int32)
	arrayStartFound(start int32) compositeCtx
	arrayEndFound(end, members int32, ctx compositeCtx)
	objectStartFound(start int32) compositeCtx
	objectEndFound(end, members int32, ctx compositeCtx)
}

// maxScanDepth bounds the number of open composites. The index spends
// 17 bytes per open composite, so the hard ceiling is MaxInt32/17;
// this practical guard triggers the same failure long before that.
const maxScanDepth = 2048

type scanner struct {
	c     cursor
	dst   tokenDestination
	depth int
}

// scanValue dispatches on the first non-whitespace byte.
func (s *scanner) scanValue() error {
	if err := s.c.skipWhitespace(); err != nil {
		return err
	}
	switch s.c.peek(0) {
	case '"':
		start, length, escaped, err := s.scanString()
		if err != nil {
			return err
		}
		s.dst.stringFound(start, length, escaped)
		return nil
	case '{':
		return s.scanObject()
	case '[':
		return s.scanArray()
	case 't':
		start := int32(s.c.off)
		if !s.c.matchLiteral("true") {
			return ErrInvalidLiteral
		}
		s.dst.booleanTrueFound(start)
		return nil
	case 'f':
		start := int32(s.c.off)
		if !s.c.matchLiteral("false") {
			return ErrInvalidLiteral
		}
		s.dst.booleanFalseFound(start)
		return nil
	case 'n':
		start := int32(s.c.off)
		if !s.c.matchLiteral("null") {
			return ErrInvalidLiteral
		}
		s.dst.nullFound(start)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return s.scanNumber()
	}
	return &SyntaxError{Reason: ExpectedValue, Offset: s.c.off}
}

func (s *scanner) scanObject() error {
	s.depth++
	if s.depth > maxScanDepth {
		return ErrStackOverflow
	}
	defer func() { s.depth-- }()

	start := int32(s.c.off)
	ctx := s.dst.objectStartFound(start)
	s.c.advance(1)
	if err := s.c.skipWhitespace(); err != nil {
		return err
	}
	if s.c.peek(0) == '}' {
		s.c.advance(1)
		s.dst.objectEndFound(int32(s.c.off), 0, ctx)
		return nil
	}
	members := int32(0)
	for {
		if s.c.peek(0) != '"' {
			return &SyntaxError{Reason: ExpectedObjectKey, Offset: s.c.off}
		}
		kStart, kLength, kEscaped, err := s.scanString()
		if err != nil {
			return err
		}
		hash := fnv1a32(s.c.buf[kStart+1 : kStart+kLength-1])
		s.dst.objectKeyFound(kStart, kLength, kEscaped, hash)

		if err := s.c.skipWhitespace(); err != nil {
			return err
		}
		if s.c.peek(0) != ':' {
			return &SyntaxError{Reason: ExpectedColon, Offset: s.c.off}
		}
		s.c.advance(1)
		if err := s.scanValue(); err != nil {
			return err
		}
		members++

		if err := s.c.skipWhitespace(); err != nil {
			return err
		}
		switch s.c.peek(0) {
		case ',':
			s.c.advance(1)
			if err := s.c.skipWhitespace(); err != nil {
				return err
			}
			if s.c.peek(0) == '}' {
				// Trailing comma.
				return &SyntaxError{Reason: ExpectedComma, Offset: s.c.off}
			}
		case '}':
			s.c.advance(1)
			s.dst.objectEndFound(int32(s.c.off), members, ctx)
			return nil
		default:
			return &SyntaxError{Reason: ExpectedComma, Offset: s.c.off}
		}
	}
}

func (s *scanner) scanArray() error {
	s.depth++
	if s.depth > maxScanDepth {
		return ErrStackOverflow
	}
	defer func() { s.depth-- }()

	start := int32(s.c.off)
	ctx := s.dst.arrayStartFound(start)
	s.c.advance(1)
	if err := s.c.skipWhitespace(); err != nil {
		return err
	}
	if s.c.peek(0) == ']' {
		s.c.advance(1)
		s.dst.arrayEndFound(int32(s.c.off), 0, ctx)
		return nil
	}
	members := int32(0)
	for {
		if err := s.scanValue(); err != nil {
			return err
		}
		members++

		if err := s.c.skipWhitespace(); err != nil {
			return err
		}
		switch s.c.peek(0) {
		case ',':
			s.c.advance(1)
			if err := s.c.skipWhitespace(); err != nil {
				return err
			}
			if s.c.peek(0) == ']' {
				// Trailing comma.
				return &SyntaxError{Reason: ExpectedComma, Offset: s.c.off}
			}
		case ']':
			s.c.advance(1)
			s.dst.arrayEndFound(int32(s.c.off), members, ctx)
			return nil
		default:
			return &SyntaxError{Reason: ExpectedComma, Offset: s.c.off}
		}
	}
}

// Bit tricks to locate a quote or backslash inside an 8 byte word.
// Standard SWAR zero-byte detection after xor with the broadcast byte.
const (
	swarOnes  = 0x0101010101010101
	swarHighs = 0x8080808080808080
)

func swarHasByte(w uint64, b byte) bool {
	x := w ^ (swarOnes * uint64(b))
	return (x-swarOnes)&^x&swarHighs != 0
}

// scanString scans a string starting at the current '"'. It returns
// the quote-inclusive span and whether any backslash was seen.
// Interior \u sequences are not decoded here.
func (s *scanner) scanString() (start, length int32, escaped bool, err error) {
	start = int32(s.c.off)
	s.c.advance(1)
	for {
		// Batch 8 bytes; fall out as soon as a quote or backslash
		// could be present in the word.
		for s.c.remaining() >= 8 {
			w := binary.LittleEndian.Uint64(s.c.buf[s.c.off:])
			if swarHasByte(w, '"') || swarHasByte(w, '\\') {
				break
			}
			s.c.advance(8)
		}
		if s.c.remaining() == 0 {
			return 0, 0, false, ErrMissingData
		}
		switch s.c.peek(0) {
		case '"':
			s.c.advance(1)
			return start, int32(s.c.off) - start, escaped, nil
		case '\\':
			escaped = true
			if s.c.remaining() < 2 {
				return 0, 0, false, ErrMissingData
			}
			s.c.advance(2)
		default:
			s.c.advance(1)
		}
	}
}

// scanNumber accepts -?digits(.digits)?((e|E)(+|-)?digits)?.
// The integer flag is cleared by any '.', 'e' or 'E'.
func (s *scanner) scanNumber() error {
	start := int32(s.c.off)
	isInteger := true
	if s.c.peek(0) == '-' {
		s.c.advance(1)
		if s.c.remaining() == 0 || !isDigit(s.c.peek(0)) {
			// A lone minus is not a number.
			return &SyntaxError{Reason: ExpectedValue, Offset: s.c.off}
		}
	}
	for s.c.remaining() > 0 && isDigit(s.c.peek(0)) {
		s.c.advance(1)
	}
	if s.c.remaining() > 0 && s.c.peek(0) == '.' {
		isInteger = false
		s.c.advance(1)
		if s.c.remaining() == 0 || !isDigit(s.c.peek(0)) {
			return &SyntaxError{Reason: ExpectedValue, Offset: s.c.off}
		}
		for s.c.remaining() > 0 && isDigit(s.c.peek(0)) {
			s.c.advance(1)
		}
	}
	if s.c.remaining() > 0 && (s.c.peek(0) == 'e' || s.c.peek(0) == 'E') {
		isInteger = false
		s.c.advance(1)
		if s.c.remaining() > 0 && (s.c.peek(0) == '+' || s.c.peek(0) == '-') {
			s.c.advance(1)
		}
		if s.c.remaining() == 0 || !isDigit(s.c.peek(0)) {
			return &SyntaxError{Reason: ExpectedValue, Offset: s.c.off}
		}
		for s.c.remaining() > 0 && isDigit(s.c.peek(0)) {
			s.c.advance(1)
		}
	}
	s.dst.numberFound(start, int32(s.c.off), isInteger)
	return nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
