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

// cursor holds the input buffer and the current scan position.
// All offsets handed to the index are derived from cursor.off.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

// peek returns the byte k positions ahead of the cursor.
// Callers must have established remaining() >= k+1.
func (c *cursor) peek(k int) byte {
	return c.buf[c.off+k]
}

func (c *cursor) advance(n int) {
	c.off += n
}

// whitespace truth table, 0x09/0x0A/0x0D/0x20.
var isWhitespace = [256]bool{
	'\t': true, '\n': true, '\r': true, ' ': true,
}

// skipWhitespace advances past any run of JSON whitespace.
// Returns ErrMissingData if the buffer is exhausted before a
// non-whitespace byte is found.
func (c *cursor) skipWhitespace() error {
	// Word-at-a-time: a chunk of 8 bytes is skipped in one load when
	// every lane is a space. Runs of plain 0x20 dominate indented input.
	for c.remaining() >= 8 {
		w := binary.LittleEndian.Uint64(c.buf[c.off:])
		if w != 0x2020202020202020 {
			break
		}
		c.off += 8
	}
	for c.off < len(c.buf) {
		if !isWhitespace[c.buf[c.off]] {
			return nil
		}
		c.off++
	}
	return ErrMissingData
}

// matchLiteral compares lit against the bytes at the cursor and
// advances past them on success.
func (c *cursor) matchLiteral(lit string) bool {
	if c.remaining() < len(lit) {
		return false
	}
	if string(c.buf[c.off:c.off+len(lit)]) != lit {
		return false
	}
	c.off += len(lit)
	return true
}
