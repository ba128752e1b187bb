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

// Object is a JSON object rooted at its own document.
// Reads resolve lazily against the message; writes edit the message
// and the index coherently in place.
type Object struct {
	doc *Document
}

// NewObject returns an empty, editable object.
func NewObject() *Object {
	return &Object{doc: NewObjectDocument()}
}

// Document returns the backing document.
func (o *Object) Document() *Document { return o.doc }

// Len returns the number of keys.
func (o *Object) Len() int {
	return int(o.doc.desc.memberCountAt(0))
}

// Keys returns the decoded key strings in source order.
func (o *Object) Keys() ([]string, error) {
	return objectKeys(&o.doc.desc, o.doc.Message, 0, false)
}

// Get returns the value of key. Composite values are returned as
// detached copies that can be edited and written back with Set.
// Returns ErrNotFound when the key does not exist.
func (o *Object) Get(key string) (Value, error) {
	_, valAt, ok := findKey(&o.doc.desc, o.doc.Message, 0, []byte(key), false, 0)
	if !ok {
		return Value{}, ErrNotFound
	}
	return o.doc.valueAt(valAt)
}

// Contains reports whether the key exists.
func (o *Object) Contains(key string) bool {
	_, _, ok := findKey(&o.doc.desc, o.doc.Message, 0, []byte(key), false, 0)
	return ok
}

// Set writes key to the given value, replacing an existing value or
// appending a new pair before the closing brace. Appending to an
// object that already holds math.MaxInt32 members fails with
// ErrStackOverflow.
func (o *Object) Set(key string, v Value) error {
	return o.doc.setObjectKey(key, v)
}

// Remove deletes key and its value.
// Returns ErrNotFound when the key does not exist.
func (o *Object) Remove(key string) error {
	return o.doc.removeObjectKey(key)
}

// Value wraps the object so it can be written into another document.
func (o *Object) Value() Value {
	return Value{kind: KindObject, doc: o.doc}
}

// MarshalJSON re-serializes the object.
func (o *Object) MarshalJSON() ([]byte, error) {
	return o.doc.MarshalJSON()
}

// Map materializes the object as map[string]interface{}.
func (o *Object) Map() (map[string]interface{}, error) {
	v, err := o.doc.Interface()
	if err != nil {
		return nil, err
	}
	return v.(map[string]interface{}), nil
}

// Element is a named element in an object.
type Element struct {
	// Name of the element.
	Name string
	// Kind of the element value.
	Kind Kind
	// Value of the element.
	Value Value
}

// Elements contains all elements in an object
// kept in original order.
// And index contains the offset in Elements of a name.
type Elements struct {
	Elements []Element
	Index    map[string]int
}

// Lookup a name in elements.
// Returns nil if the element cannot be found.
func (e Elements) Lookup(key string) *Element {
	v, ok := e.Index[key]
	if !ok {
		return nil
	}
	return &e.Elements[v]
}

// MarshalJSON serializes the elements as a JSON object, in their
// stored order.
func (e Elements) MarshalJSON() ([]byte, error) {
	dst := []byte{'{'}
	for i, elem := range e.Elements {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst, _ = appendQuoted(dst, []byte(elem.Name))
		dst = append(dst, ':')
		var err error
		dst, err = appendValueJSON(dst, elem.Value)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

// Parse will return all elements and their values.
// An optional destination can be given.
func (o *Object) Parse(dst *Elements) (*Elements, error) {
	members := int(o.doc.desc.memberCountAt(0))
	if dst == nil {
		dst = &Elements{
			Elements: make([]Element, 0, members),
			Index:    make(map[string]int, members),
		}
	} else {
		dst.Elements = dst.Elements[:0]
		for k := range dst.Index {
			delete(dst.Index, k)
		}
	}
	d := &o.doc.desc
	at := int32(compositeHeaderSize)
	for i := 0; i < members; i++ {
		kb, err := stringData(d, o.doc.Message, at)
		if err != nil {
			return dst, err
		}
		at = d.skipRecord(at)
		v, err := o.doc.valueAt(at)
		if err != nil {
			return dst, err
		}
		at = d.skipRecord(at)
		dst.Index[string(kb)] = len(dst.Elements)
		dst.Elements = append(dst.Elements, Element{
			Name:  string(kb),
			Kind:  v.Kind(),
			Value: v,
		})
	}
	return dst, nil
}
