/*
Copyright 2023 Alexander Bartolomey (github@alexanderbartolomey.de)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package extend

import (
	"bytes"
	"encoding/binary"

	ipfix "github.com/flowkit/ipfix-extender"
)

// Builder is the message builder of spec.md §4.C: an append-only writer
// over a single owned byte buffer that mirrors the IPFIX message frame,
// tracking the currently-open Data Set so its length can be back-patched
// on close, and the overall message length for the same reason.
type Builder struct {
	buf    []byte
	msgLen int

	dsetOpen  bool
	dsetStart int
	dsetId    uint16
}

// NewBuilder reserves a buffer of exactly capacity bytes. Per spec.md §5's
// allocation discipline, the buffer is sized once upfront and never grows;
// Write returns ErrBufferExhausted instead of reallocating.
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, capacity)}
}

// Write appends p to the buffer, advancing the message length.
func (b *Builder) Write(p []byte) (int, error) {
	if b.msgLen+len(p) > len(b.buf) {
		return 0, ErrBufferExhausted
	}
	n := copy(b.buf[b.msgLen:], p)
	b.msgLen += n
	return n, nil
}

// WriteHeader writes msg's 16-byte Message Header verbatim (Length will be
// back-patched by Finish), per spec.md §4.C's "new(capacity, original_header)".
func (b *Builder) WriteHeader(msg *ipfix.Message) error {
	buf := &bytes.Buffer{}
	if _, err := msg.EncodeHeader(buf); err != nil {
		return err
	}
	_, err := b.Write(buf.Bytes())
	return err
}

// CopySet appends a verbatim, already-framed set (header and body) to the
// output, used for every non-Data Set (spec.md §4.E).
func (b *Builder) CopySet(headerAndBody []byte) error {
	if b.dsetOpen {
		return ErrSetOpenDuringWrite
	}
	_, err := b.Write(headerAndBody)
	return err
}

// BeginDataSet reserves a 4-byte Set Header at the current offset with the
// given flowset_id and a zero length placeholder, per spec.md §4.C.
func (b *Builder) BeginDataSet(flowsetId uint16) error {
	if b.dsetOpen {
		return ErrSetAlreadyOpen
	}
	start := b.msgLen
	if _, err := b.Write([]byte{0, 0, 0, 0}); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b.buf[start:start+2], flowsetId)
	b.dsetOpen = true
	b.dsetStart = start
	b.dsetId = flowsetId
	return nil
}

// CurrentDataSet reports the flowset_id of the currently open Data Set, if any.
func (b *Builder) CurrentDataSet() (flowsetId uint16, open bool) {
	return b.dsetId, b.dsetOpen
}

// EndDataSet closes the currently open Data Set: pads its body to a 4-byte
// boundary and back-patches its length field. A set with zero body bytes
// (no Data Record was ever written into it) is elided entirely by rewinding
// the message length past the placeholder header, per spec.md §4.C.
func (b *Builder) EndDataSet() error {
	if !b.dsetOpen {
		return nil
	}
	length := b.msgLen - b.dsetStart
	if length == ipfix.SetHeaderLength {
		b.msgLen = b.dsetStart
		b.dsetOpen = false
		return nil
	}

	if pad := (4 - length%4) % 4; pad > 0 {
		if _, err := b.Write(make([]byte, pad)); err != nil {
			return err
		}
		length += pad
	}
	binary.BigEndian.PutUint16(b.buf[b.dsetStart+2:b.dsetStart+4], uint16(length))
	b.dsetOpen = false
	return nil
}

// WriteTemplateSet frames raw (an already-derived Template record) inside a
// Template Set (flowset_id 2), padded to a 4-byte boundary, per spec.md
// §4.B step 5. It cannot be called while a Data Set is open: per §5's
// Ordering invariant, a Template Set is only ever newly derived at an input
// set boundary, where no Data Set is open.
func (b *Builder) WriteTemplateSet(raw []byte) error {
	if b.dsetOpen {
		return ErrSetOpenDuringWrite
	}
	setLen := ipfix.SetHeaderLength + len(raw)
	pad := (4 - setLen%4) % 4

	hdr := make([]byte, 0, ipfix.SetHeaderLength)
	hdr = binary.BigEndian.AppendUint16(hdr, ipfix.IPFIX)
	hdr = binary.BigEndian.AppendUint16(hdr, uint16(setLen+pad))
	if _, err := b.Write(hdr); err != nil {
		return err
	}
	if _, err := b.Write(raw); err != nil {
		return err
	}
	if pad > 0 {
		if _, err := b.Write(make([]byte, pad)); err != nil {
			return err
		}
	}
	return nil
}

// Finish closes any still-open Data Set and back-patches the Message
// Header's Length field, per spec.md §4.C. It returns the final message
// bytes; the caller must not reuse the Builder afterwards.
func (b *Builder) Finish() ([]byte, error) {
	if b.dsetOpen {
		if err := b.EndDataSet(); err != nil {
			return nil, err
		}
	}
	binary.BigEndian.PutUint16(b.buf[2:4], uint16(b.msgLen))
	return b.buf[:b.msgLen], nil
}

// IsEmpty reports whether the message being built has only its 16-byte
// header and no sets at all, per spec.md §4.C's is_empty_msg.
func (b *Builder) IsEmpty() bool {
	return b.msgLen <= ipfix.MessageHeaderLength
}
