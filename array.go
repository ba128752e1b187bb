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

// Array is a JSON array rooted at its own document.
type Array struct {
	doc *Document
}

// NewArray returns an empty, editable array.
func NewArray() *Array {
	return &Array{doc: NewArrayDocument()}
}

// Document returns the backing document.
func (a *Array) Document() *Document { return a.doc }

// Len returns the number of elements.
func (a *Array) Len() int {
	return int(a.doc.desc.memberCountAt(0))
}

// At returns element i. Composite values are returned as detached
// copies. Returns ErrNotFound when i is out of range.
func (a *Array) At(i int) (Value, error) {
	at, ok := arrayElement(&a.doc.desc, 0, int32(i))
	if !ok {
		return Value{}, ErrNotFound
	}
	return a.doc.valueAt(at)
}

// Set replaces element i.
// Returns ErrNotFound when i is out of range.
func (a *Array) Set(i int, v Value) error {
	at, ok := arrayElement(&a.doc.desc, 0, int32(i))
	if !ok {
		return ErrNotFound
	}
	return a.doc.replaceValue(at, v)
}

// Append adds an element before the closing bracket. Appending to an
// array that already holds math.MaxInt32 elements fails with
// ErrStackOverflow.
func (a *Array) Append(v Value) error {
	return a.doc.appendArrayElement(v)
}

// Remove deletes element i.
// Returns ErrNotFound when i is out of range.
func (a *Array) Remove(i int) error {
	return a.doc.removeArrayElement(i)
}

// Value wraps the array so it can be written into another document.
func (a *Array) Value() Value {
	return Value{kind: KindArray, doc: a.doc}
}

// MarshalJSON re-serializes the array.
func (a *Array) MarshalJSON() ([]byte, error) {
	return a.doc.MarshalJSON()
}

// Interface materializes the array as []interface{}.
func (a *Array) Interface() ([]interface{}, error) {
	v, err := a.doc.Interface()
	if err != nil {
		return nil, err
	}
	return v.([]interface{}), nil
}
