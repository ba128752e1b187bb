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
	"math"
	"reflect"
	"strconv"
	"testing"
)

func TestDecodeEmoji(t *testing.T) {
	js := `{"yes":"✅","bug":"🐛","awesome":[true,false,false,false,true],"flag":"🇳🇱"}`
	type emoji struct {
		Yes     string `json:"yes"`
		Bug     string `json:"bug"`
		Awesome []bool `json:"awesome"`
		Flag    string `json:"flag"`
	}
	var got emoji
	if err := Unmarshal([]byte(js), &got); err != nil {
		t.Fatal(err)
	}
	want := emoji{
		Yes:     "✅",
		Bug:     "🐛",
		Awesome: []bool{true, false, false, false, true},
		Flag:    "🇳🇱",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	// Re-encoding and re-decoding is idempotent.
	enc, err := Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	var again emoji
	if err := Unmarshal(enc, &again); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(again, want) {
		t.Fatalf("after round trip: %+v", again)
	}
}

func TestDecodeSurrogatePair(t *testing.T) {
	js := `{"complex":"\uD83D\uDC69\u200D\uD83D\uDC69"}`
	var got struct {
		Complex string `json:"complex"`
	}
	if err := Unmarshal([]byte(js), &got); err != nil {
		t.Fatal(err)
	}
	if got.Complex != "👩‍👩" {
		t.Fatalf("got %q", got.Complex)
	}
}

func TestDecodeSnakeCase(t *testing.T) {
	js := `{"user_name":"Joannis","e_mail":"joannis@orlandos.nl"}`
	type user struct {
		UserName string `json:"userName"`
		EMail    string `json:"eMail"`
	}
	dec, err := NewDecoder(WithKeyDecodingStrategy(ConvertFromSnakeCase))
	if err != nil {
		t.Fatal(err)
	}
	var got user
	if err := dec.Decode([]byte(js), &got); err != nil {
		t.Fatal(err)
	}
	if got.UserName != "Joannis" || got.EMail != "joannis@orlandos.nl" {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeIntegerBounds(t *testing.T) {
	tests := []struct {
		name    string
		js      string
		want    int64
		wantErr bool
	}{
		{name: "max", js: strconv.FormatInt(math.MaxInt64, 10), want: math.MaxInt64},
		{name: "min", js: strconv.FormatInt(math.MinInt64, 10), want: math.MinInt64},
		{name: "maxplusone", js: "9223372036854775808", wantErr: true},
		{name: "minminusone", js: "-9223372036854775809", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int64
			err := Unmarshal([]byte(`{"v":`+tt.js+`}`), &struct {
				V *int64 `json:"v"`
			}{V: &got})
			if tt.wantErr {
				var tc *TypeConversionError
				if !errors.As(err, &tc) {
					t.Fatalf("error = %v, want type conversion error", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecodeNarrowIntegers(t *testing.T) {
	type narrow struct {
		A int8   `json:"a"`
		B uint16 `json:"b"`
	}
	var got narrow
	if err := Unmarshal([]byte(`{"a":-128,"b":65535}`), &got); err != nil {
		t.Fatal(err)
	}
	if got.A != -128 || got.B != 65535 {
		t.Fatalf("got %+v", got)
	}
	var tc *TypeConversionError
	if err := Unmarshal([]byte(`{"a":128,"b":1}`), &got); !errors.As(err, &tc) {
		t.Fatalf("int8 overflow error = %v", err)
	}
	if err := Unmarshal([]byte(`{"a":1,"b":-1}`), &got); !errors.As(err, &tc) {
		t.Fatalf("negative uint error = %v", err)
	}
}

func TestDecodeFloats(t *testing.T) {
	tests := []string{
		"0", "1", "-1", "10.0", "1e1", "1.0e+1", "2.5", "-2.5e-3",
		"12345465.447", "3.141592653589793", "1e308", "1e-308",
		"1.7976931348623157e308", "5e-324", "123456789012345678901234567890",
	}
	for _, js := range tests {
		t.Run(js, func(t *testing.T) {
			var got struct {
				V float64 `json:"v"`
			}
			if err := Unmarshal([]byte(`{"v":`+js+`}`), &got); err != nil {
				t.Fatal(err)
			}
			want, err := strconv.ParseFloat(js, 64)
			if err != nil {
				t.Fatal(err)
			}
			if got.V != want {
				t.Fatalf("got %v, want %v", got.V, want)
			}
		})
	}
	// 1e1, 1.0e+1 and 10.0 agree.
	var a, b, c struct {
		V float64 `json:"v"`
	}
	if err := Unmarshal([]byte(`{"v":1e1}`), &a); err != nil {
		t.Fatal(err)
	}
	if err := Unmarshal([]byte(`{"v":1.0e+1}`), &b); err != nil {
		t.Fatal(err)
	}
	if err := Unmarshal([]byte(`{"v":10.0}`), &c); err != nil {
		t.Fatal(err)
	}
	if a.V != 10 || b.V != 10 || c.V != 10 {
		t.Fatalf("got %v %v %v", a.V, b.V, c.V)
	}
}

func TestDecodeMissingKey(t *testing.T) {
	type target struct {
		A int     `json:"a"`
		B *string `json:"b"`
	}

	// Default: every mapped key must be present; null satisfies
	// nilable destinations.
	var v target
	if err := Unmarshal([]byte(`{"a":1,"b":null}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.A != 1 || v.B != nil {
		t.Fatalf("got %+v", v)
	}
	err := Unmarshal([]byte(`{"a":1}`), &v)
	var de *DecodingError
	if !errors.As(err, &de) || !errors.Is(err, ErrMissingValue) {
		t.Fatalf("missing key error = %v", err)
	}

	// DecodeNilForKeyNotFound: missing keys satisfy nilable
	// destinations.
	dec, err := NewDecoder(WithNilDecodingStrategy(DecodeNilForKeyNotFound))
	if err != nil {
		t.Fatal(err)
	}
	v = target{}
	if err := dec.Decode([]byte(`{"a":1}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.A != 1 || v.B != nil {
		t.Fatalf("got %+v", v)
	}
	if err := dec.Decode([]byte(`{"b":"x"}`), &v); err == nil {
		t.Fatal("missing non-nilable key must still fail")
	}

	// TreatNilValuesAsMissing: null is an error for nilable
	// destinations.
	dec, err = NewDecoder(WithNilDecodingStrategy(TreatNilValuesAsMissing))
	if err != nil {
		t.Fatal(err)
	}
	if err := dec.Decode([]byte(`{"a":1,"b":null}`), &v); !errors.Is(err, ErrMissingValue) {
		t.Fatalf("null-as-missing error = %v", err)
	}
}

func TestDecodeNested(t *testing.T) {
	js := `{"name":"n","inner":{"count":3,"tags":["x","y"]},"extra":{"k":true}}`
	type inner struct {
		Count int      `json:"count"`
		Tags  []string `json:"tags"`
	}
	type outer struct {
		Name  string          `json:"name"`
		Inner inner           `json:"inner"`
		Extra map[string]bool `json:"extra"`
	}
	var got outer
	if err := Unmarshal([]byte(js), &got); err != nil {
		t.Fatal(err)
	}
	want := outer{
		Name:  "n",
		Inner: inner{Count: 3, Tags: []string{"x", "y"}},
		Extra: map[string]bool{"k": true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDecodeOutOfOrderFields(t *testing.T) {
	// The document's key order is reversed relative to field order;
	// the hint wrap-around must still find everything.
	js := `{"d":4,"c":3,"b":2,"a":1}`
	var got struct {
		A int `json:"a"`
		B int `json:"b"`
		C int `json:"c"`
		D int `json:"d"`
	}
	if err := Unmarshal([]byte(js), &got); err != nil {
		t.Fatal(err)
	}
	if got.A != 1 || got.B != 2 || got.C != 3 || got.D != 4 {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodePathInError(t *testing.T) {
	js := `{"outer":{"inner":{"v":"notanumber"}}}`
	var got struct {
		Outer struct {
			Inner struct {
				V int `json:"v"`
			} `json:"inner"`
		} `json:"outer"`
	}
	err := Unmarshal([]byte(js), &got)
	var de *DecodingError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v", err)
	}
	if want := []string{"outer", "inner", "v"}; !reflect.DeepEqual(de.Path, want) {
		t.Fatalf("path = %v, want %v", de.Path, want)
	}
}

func TestDecodeTypeMismatch(t *testing.T) {
	var got struct {
		V int `json:"v"`
	}
	var de *DecodingError
	if err := Unmarshal([]byte(`{"v":"str"}`), &got); !errors.As(err, &de) {
		t.Fatalf("error = %v", err)
	}
	if err := Unmarshal([]byte(`{"v":2.5}`), &got); !errors.As(err, &de) {
		t.Fatalf("float into int error = %v", err)
	}
}

func TestDecodeTopLevel(t *testing.T) {
	var s struct{}
	if err := Unmarshal([]byte(`[1,2]`), &s); !errors.Is(err, ErrInvalidTopLevelObject) {
		t.Fatalf("error = %v", err)
	}
	var n int
	if err := Unmarshal([]byte(`42`), &n); err != nil {
		t.Fatal(err)
	}
	if n != 42 {
		t.Fatalf("got %d", n)
	}
}

func TestDecodeInterface(t *testing.T) {
	js := `{"s":"x","n":1,"f":2.5,"b":true,"z":null,"a":[1,"two"],"o":{"k":"v"}}`
	var got map[string]interface{}
	if err := Unmarshal([]byte(js), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"s": "x",
		"n": int64(1),
		"f": 2.5,
		"b": true,
		"z": nil,
		"a": []interface{}{int64(1), "two"},
		"o": map[string]interface{}{"k": "v"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestDecodeEmbedded(t *testing.T) {
	type base struct {
		ID int `json:"id"`
	}
	type wrapped struct {
		base
		Name string `json:"name"`
	}
	var got wrapped
	if err := Unmarshal([]byte(`{"id":7,"name":"n"}`), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != 7 || got.Name != "n" {
		t.Fatalf("got %+v", got)
	}
}

func TestArrayCursor(t *testing.T) {
	doc, err := Parse([]byte(`[1,null,3]`), nil)
	if err != nil {
		t.Fatal(err)
	}
	st := decodeState{doc: doc}
	cur := st.arrayCursor(0)

	var v int
	if err := cur.decode(reflect.ValueOf(&v).Elem()); err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Fatalf("got %d", v)
	}
	wasNil, err := cur.decodeNil()
	if err != nil || !wasNil {
		t.Fatalf("decodeNil = %v, %v", wasNil, err)
	}
	wasNil, err = cur.decodeNil()
	if err != nil || wasNil {
		t.Fatalf("decodeNil on 3 = %v, %v", wasNil, err)
	}
	if err := cur.decode(reflect.ValueOf(&v).Elem()); err != nil {
		t.Fatal(err)
	}
	if v != 3 || !cur.isAtEnd() {
		t.Fatalf("got %d, atEnd %v", v, cur.isAtEnd())
	}
	if err := cur.decode(reflect.ValueOf(&v).Elem()); !errors.Is(err, ErrEndOfArray) {
		t.Fatalf("past end = %v", err)
	}
}
