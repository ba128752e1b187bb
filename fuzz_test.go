//go:build go1.18
// +build go1.18

/*
 * MinIO Cloud Storage, (C) 2022 MinIO, Inc.
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
	"encoding/json"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

func FuzzParse(f *testing.F) {
	for _, seed := range []string{
		`{}`, `[]`, `null`, `true`, `"x"`, `-1.5e3`,
		`{"a":1,"b":[true,null,"s"],"c":{"d":2.5}}`,
		`{"user_name":"Joannis","e_mail":"joannis@orlandos.nl"}`,
		`{"complex":"👩‍👩"}`,
		`[1e308,5e-324,9223372036854775807,-9223372036854775808]`,
		`{"esc":"a\/b\n\t\"q\""}`,
		`{"a":1 "b":2}`, `[1,]`, `{"a":}`, `"open`,
	} {
		f.Add([]byte(seed))
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		doc, err := Parse(data, nil)
		if err != nil {
			// Rejected input; nothing further to check.
			t.Skip()
			return
		}
		if err := doc.desc.validate(doc.Message); err != nil {
			t.Fatalf("accepted input built invalid description: %v", err)
		}
		out, err := doc.MarshalJSON()
		if err != nil {
			t.Fatalf("accepted input failed to serialize: %v", err)
		}
		// Independent decoders should normally accept what we emit.
		// Differences are informational: the scanner is deliberately
		// lax where the index never needs to coerce (numeric range,
		// raw control bytes).
		var std interface{}
		if jErr := json.Unmarshal(out, &std); jErr != nil {
			t.Logf("stdlib rejects re-serialized %q: %v", out, jErr)
		}
		var iter interface{}
		if jErr := jsoniter.Unmarshal(out, &iter); jErr != nil {
			t.Logf("jsoniter rejects re-serialized %q: %v", out, jErr)
		}
		// Serializing is stable after one normalization pass.
		doc2, err := Parse(out, nil)
		if err != nil {
			t.Fatalf("re-parse of %q: %v", out, err)
		}
		out2, err := doc2.MarshalJSON()
		if err != nil {
			t.Fatal(err)
		}
		if string(out2) != string(out) {
			t.Errorf("serialization not stable: %q != %q", out2, out)
		}
	})
}

func FuzzMutate(f *testing.F) {
	f.Add([]byte(`{"a":1,"b":"two","c":[3]}`), "b", "x")
	f.Add([]byte(`{}`), "k", "v")
	f.Add([]byte(`{"only":null}`), "only", "")
	f.Fuzz(func(t *testing.T, data []byte, key, val string) {
		doc, err := Parse(data, nil)
		if err != nil || doc.desc.tagAt(0) != tagObject {
			t.Skip()
			return
		}
		obj, err := doc.Object()
		if err != nil {
			t.Fatal(err)
		}
		if err := obj.Set(key, String(val)); err != nil {
			t.Fatalf("set %q: %v", key, err)
		}
		if err := doc.desc.validate(doc.Message); err != nil {
			t.Fatalf("incoherent after set: %v", err)
		}
		got, err := obj.Get(key)
		if err != nil {
			t.Fatalf("get %q after set: %v", key, err)
		}
		if s, _ := got.StringVal(); s != val {
			t.Fatalf("get %q = %q, want %q", key, s, val)
		}
		if err := obj.Remove(key); err != nil {
			t.Fatalf("remove %q: %v", key, err)
		}
		if err := doc.desc.validate(doc.Message); err != nil {
			t.Fatalf("incoherent after remove: %v", err)
		}
	})
}
