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
	"unicode/utf16"
	"unicode/utf8"
)

// unescape processes the escape sequences of a raw string span and
// appends the decoded bytes to dst. \uXXXX sequences are decoded
// here, including UTF-16 surrogate pair joining. \/ is accepted.
func unescape(dst, src []byte) ([]byte, error) {
	for i := 0; i < len(src); {
		c := src[i]
		if c != '\\' {
			dst = append(dst, c)
			i++
			continue
		}
		if i+1 >= len(src) {
			return nil, fmt.Errorf("%w: dangling backslash", ErrInvalidData)
		}
		switch src[i+1] {
		case '"':
			dst = append(dst, '"')
		case '\\':
			dst = append(dst, '\\')
		case '/':
			dst = append(dst, '/')
		case 'b':
			dst = append(dst, '\b')
		case 'f':
			dst = append(dst, '\f')
		case 'n':
			dst = append(dst, '\n')
		case 'r':
			dst = append(dst, '\r')
		case 't':
			dst = append(dst, '\t')
		case 'u':
			r, n, err := decodeUnicodeEscape(src[i:])
			if err != nil {
				return nil, err
			}
			var tmp [utf8.UTFMax]byte
			dst = append(dst, tmp[:utf8.EncodeRune(tmp[:], r)]...)
			i += n
			continue
		default:
			return nil, fmt.Errorf("%w: unknown escape \\%c", ErrInvalidData, src[i+1])
		}
		i += 2
	}
	return dst, nil
}

// decodeUnicodeEscape decodes \uXXXX at the start of src, joining a
// high surrogate with the \uXXXX that must follow it. Returns the
// rune and the number of input bytes consumed.
func decodeUnicodeEscape(src []byte) (rune, int, error) {
	if len(src) < 6 {
		return 0, 0, fmt.Errorf("%w: truncated unicode escape", ErrInvalidData)
	}
	r1, ok := hex4(src[2:6])
	if !ok {
		return 0, 0, fmt.Errorf("%w: malformed unicode escape", ErrInvalidData)
	}
	if !utf16.IsSurrogate(r1) {
		return r1, 6, nil
	}
	if len(src) >= 12 && src[6] == '\\' && src[7] == 'u' {
		if r2, ok := hex4(src[8:12]); ok {
			if r := utf16.DecodeRune(r1, r2); r != utf8.RuneError {
				return r, 12, nil
			}
		}
	}
	// Lone surrogate, emit the replacement character.
	return utf8.RuneError, 6, nil
}

func hex4(src []byte) (rune, bool) {
	var r rune
	for _, c := range src[:4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return r, true
}

// escapeBytes will escape JSON bytes.
// Output is appended to dst.
func escapeBytes(dst, src []byte) []byte {
	for _, s := range src {
		switch s {
		case '\b':
			dst = append(dst, '\\', 'b')

		case '\f':
			dst = append(dst, '\\', 'f')

		case '\n':
			dst = append(dst, '\\', 'n')

		case '\r':
			dst = append(dst, '\\', 'r')

		case '"':
			dst = append(dst, '\\', '"')

		case '\t':
			dst = append(dst, '\\', 't')

		case '\\':
			dst = append(dst, '\\', '\\')

		default:
			if s <= 0x1f {
				dst = append(dst, '\\', 'u', '0', '0', valToHex[s>>4], valToHex[s&0xf])
			} else {
				dst = append(dst, s)
			}
		}
	}

	return dst
}

var valToHex = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// appendQuoted writes src as a quoted JSON string to dst and reports
// whether any escape sequence was produced.
func appendQuoted(dst, src []byte) ([]byte, bool) {
	dst = append(dst, '"')
	before := len(dst)
	dst = escapeBytes(dst, src)
	escaped := len(dst)-before != len(src)
	dst = append(dst, '"')
	return dst, escaped
}

// snakeEqualsCamel reports whether a snake_case key equals a
// camelCase search key after collapsing every "_x" into "X".
func snakeEqualsCamel(snake, camel []byte) bool {
	j := 0
	for i := 0; i < len(snake); i++ {
		c := snake[i]
		if c == '_' && i+1 < len(snake) && snake[i+1] >= 'a' && snake[i+1] <= 'z' {
			i++
			c = snake[i] - 'a' + 'A'
		}
		if j >= len(camel) || c != camel[j] {
			return false
		}
		j++
	}
	return j == len(camel)
}

// snakeToCamel converts a snake_case key to its camelCase form.
func snakeToCamel(dst, snake []byte) []byte {
	for i := 0; i < len(snake); i++ {
		c := snake[i]
		if c == '_' && i+1 < len(snake) && snake[i+1] >= 'a' && snake[i+1] <= 'z' {
			i++
			c = snake[i] - 'a' + 'A'
		}
		dst = append(dst, c)
	}
	return dst
}

// camelToSnake converts a camelCase key to its snake_case form.
func camelToSnake(dst []byte, camel string) []byte {
	for i := 0; i < len(camel); i++ {
		c := camel[i]
		if c >= 'A' && c <= 'Z' {
			dst = append(dst, '_', c-'A'+'a')
			continue
		}
		dst = append(dst, c)
	}
	return dst
}
