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

package lazyjson_test

import (
	"fmt"

	lazyjson "github.com/minio/lazyjson-go"
)

func ExampleUnmarshal() {
	type User struct {
		Name  string   `json:"name"`
		Roles []string `json:"roles"`
	}
	var u User
	err := lazyjson.Unmarshal([]byte(`{"name":"Joannis","roles":["admin"]}`), &u)
	if err != nil {
		panic(err)
	}
	fmt.Println(u.Name, u.Roles)
	// Output: Joannis [admin]
}

func ExampleObject_Set() {
	obj := lazyjson.NewObject()
	if err := obj.Set("username", lazyjson.String("Joannis")); err != nil {
		panic(err)
	}
	roles := lazyjson.NewArray()
	if err := roles.Append(lazyjson.String("admin")); err != nil {
		panic(err)
	}
	if err := obj.Set("roles", roles.Value()); err != nil {
		panic(err)
	}
	out, err := obj.MarshalJSON()
	if err != nil {
		panic(err)
	}
	fmt.Println(string(out))
	// Output: {"username":"Joannis","roles":["admin"]}
}

func ExampleObject_Remove() {
	doc, err := lazyjson.Parse([]byte(`{"a":1,"b":2,"c":3}`), nil)
	if err != nil {
		panic(err)
	}
	obj, err := doc.Object()
	if err != nil {
		panic(err)
	}
	if err := obj.Remove("b"); err != nil {
		panic(err)
	}
	out, err := obj.MarshalJSON()
	if err != nil {
		panic(err)
	}
	fmt.Println(string(out))
	// Output: {"a":1,"c":3}
}
