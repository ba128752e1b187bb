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
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	gojson "github.com/goccy/go-json"
	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/cpuid/v2"
)

// sonicSupported gates the sonic comparisons to CPUs its JIT targets.
func sonicSupported() bool {
	return cpuid.CPU.Supports(cpuid.AVX2)
}

func benchMessage(keys int) []byte {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := 0; i < keys; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(`"key`)
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(`":{"id":`)
		sb.WriteString(strconv.Itoa(i * 997))
		sb.WriteString(`,"name":"item-`)
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(`","score":`)
		sb.WriteString(strconv.FormatFloat(float64(i)*0.25, 'f', -1, 64))
		sb.WriteString(`,"active":`)
		sb.WriteString(strconv.FormatBool(i%2 == 0))
		sb.WriteString(`,"tags":["a","b","c"]}`)
	}
	sb.WriteByte('}')
	return []byte(sb.String())
}

func BenchmarkParse(b *testing.B) {
	msg := benchMessage(100)
	b.SetBytes(int64(len(msg)))
	b.ReportAllocs()
	b.ResetTimer()
	var doc *Document
	var err error
	for i := 0; i < b.N; i++ {
		doc, err = Parse(msg, doc)
		if err != nil {
			b.Fatal(err)
		}
	}
}

type benchRecord struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Score  float64  `json:"score"`
	Active bool     `json:"active"`
	Tags   []string `json:"tags"`
}

func BenchmarkDecodeStruct(b *testing.B) {
	msg := []byte(`{"id":42,"name":"item-42","score":10.5,"active":true,"tags":["a","b","c"]}`)
	b.Run("lazyjson", func(b *testing.B) {
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var r benchRecord
			if err := Unmarshal(msg, &r); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("stdlib", func(b *testing.B) {
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var r benchRecord
			if err := json.Unmarshal(msg, &r); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("jsoniter", func(b *testing.B) {
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var r benchRecord
			if err := jsoniter.Unmarshal(msg, &r); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("goccy", func(b *testing.B) {
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var r benchRecord
			if err := gojson.Unmarshal(msg, &r); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("sonic", func(b *testing.B) {
		if !sonicSupported() {
			b.SkipNow()
		}
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var r benchRecord
			if err := sonic.Unmarshal(msg, &r); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkSingleKey measures the lazy advantage: extracting one key
// from a large document without materializing the rest.
func BenchmarkSingleKey(b *testing.B) {
	msg := benchMessage(1000)
	b.Run("lazyjson", func(b *testing.B) {
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		var doc *Document
		var err error
		for i := 0; i < b.N; i++ {
			doc, err = Parse(msg, doc)
			if err != nil {
				b.Fatal(err)
			}
			obj, err := doc.Object()
			if err != nil {
				b.Fatal(err)
			}
			if !obj.Contains("key999") {
				b.Fatal("key not found")
			}
		}
	})
	b.Run("stdlib", func(b *testing.B) {
		b.SetBytes(int64(len(msg)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var m map[string]interface{}
			if err := json.Unmarshal(msg, &m); err != nil {
				b.Fatal(err)
			}
			if _, ok := m["key999"]; !ok {
				b.Fatal("key not found")
			}
		}
	})
}

func BenchmarkMarshalStruct(b *testing.B) {
	r := benchRecord{ID: 42, Name: "item-42", Score: 10.5, Active: true, Tags: []string{"a", "b", "c"}}
	b.Run("lazyjson", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := Marshal(r); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("stdlib", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := json.Marshal(r); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("jsoniter", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := jsoniter.Marshal(r); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("sonic", func(b *testing.B) {
		if !sonicSupported() {
			b.SkipNow()
		}
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := sonic.Marshal(r); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkSerializer(b *testing.B) {
	msg := benchMessage(100)
	doc, err := Parse(msg, nil)
	if err != nil {
		b.Fatal(err)
	}
	for _, tt := range []struct {
		name string
		mode CompressMode
	}{
		{name: "none", mode: CompressNone},
		{name: "default", mode: CompressDefault},
		{name: "best", mode: CompressBest},
	} {
		b.Run(tt.name, func(b *testing.B) {
			s := NewSerializer()
			s.CompressMode(tt.mode)
			var blob []byte
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				blob = s.Serialize(blob[:0], doc)
			}
			b.SetBytes(int64(len(blob)))
		})
	}
}
