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

// builder is the token destination that writes index records as a
// side effect of a single forward pass over the input. Scalar tokens
// emit their record immediately; composite starts reserve a 12 byte
// back-patch hole that the matching end token fills in.
type builder struct {
	desc *description
}

func (b *builder) stringFound(start, length int32, escaped bool) {
	t := tagString
	if escaped {
		t = tagStringEscaped
	}
	b.desc.writeByte(byte(t))
	b.desc.writeInt32(start)
	b.desc.writeInt32(length)
}

func (b *builder) objectKeyFound(start, length int32, escaped bool, hash uint32) {
	t := tagKey
	if escaped {
		t = tagKeyEscaped
	}
	b.desc.writeByte(byte(t))
	b.desc.writeInt32(start)
	b.desc.writeInt32(length)
	b.desc.writeUint32(hash)
}

func (b *builder) numberFound(start, end int32, isInteger bool) {
	t := tagFloat
	if isInteger {
		t = tagInteger
	}
	b.desc.writeByte(byte(t))
	b.desc.writeInt32(start)
	b.desc.writeInt32(end - start)
}

func (b *builder) booleanTrueFound(start int32) {
	b.desc.writeByte(byte(tagBoolTrue))
	b.desc.writeInt32(start)
}

func (b *builder) booleanFalseFound(start int32) {
	b.desc.writeByte(byte(tagBoolFalse))
	b.desc.writeInt32(start)
}

func (b *builder) nullFound(start int32) {
	b.desc.writeByte(byte(tagNull))
	b.desc.writeInt32(start)
}

func (b *builder) openComposite(t tag, start int32) compositeCtx {
	header := int32(b.desc.size())
	b.desc.writeByte(byte(t))
	b.desc.writeInt32(start)
	b.desc.moveWriter(12)
	return compositeCtx{header: header, firstChild: header + compositeHeaderSize}
}

func (b *builder) closeComposite(end, members int32, ctx compositeCtx) {
	d := b.desc
	start := d.jsonOffsetAt(ctx.header)
	d.setInt32(ctx.header+fieldJSONLength, end-start)
	d.setInt32(ctx.header+fieldMembers, members)
	d.setInt32(ctx.header+fieldChildLen, int32(d.size())-ctx.firstChild)
}

func (b *builder) arrayStartFound(start int32) compositeCtx {
	return b.openComposite(tagArray, start)
}

func (b *builder) arrayEndFound(end, members int32, ctx compositeCtx) {
	b.closeComposite(end, members, ctx)
}

func (b *builder) objectStartFound(start int32) compositeCtx {
	return b.openComposite(tagObject, start)
}

func (b *builder) objectEndFound(end, members int32, ctx compositeCtx) {
	b.closeComposite(end, members, ctx)
}
