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

type parserConfig struct {
	copyBuffer bool
}

// ParserOption is a parser option.
type ParserOption func(cfg *parserConfig) error

// WithCopyBuffer will copy the input so the document no longer
// references it. The default is to alias the input for zero-copy
// reads; set this when the caller reuses its buffer, or when the
// document will be mutated while the input must stay intact.
// Default: false - the input is aliased.
func WithCopyBuffer(b bool) ParserOption {
	return func(cfg *parserConfig) error {
		cfg.copyBuffer = b
		return nil
	}
}
