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

package ipfix

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DataRecord is a Data Record kept as a raw byte range rather than decoded
// into typed fields. The engine copies Data.Bytes verbatim and never inspects
// individual field values, so there is no decoded Fields slice here: this
// mirrors the host's "array of {tmplt, data, size} references" model instead
// of a general-purpose decoder's per-field Field/DataType machinery.
type DataRecord struct {
	TemplateId uint16 `json:"templateId,omitempty"`

	Data []byte `json:"-"`
}

func (dr DataRecord) Size() int {
	return len(dr.Data)
}

func (dr DataRecord) Encode(w io.Writer) (n int, err error) {
	return w.Write(dr.Data)
}

func (dr DataRecord) String() string {
	return fmt.Sprintf("<id=%d,bytes=%d>", dr.TemplateId, len(dr.Data))
}

// DecodeDataRecord reads exactly one Data Record governed by tr from r,
// following tr's field specifiers to find each field's boundary (including
// IPFIX's 1-or-3-byte variable-length prefix), without decoding any value.
func DecodeDataRecord(r io.Reader, tr *TemplateRecord) (DataRecord, int, error) {
	dr := DataRecord{TemplateId: tr.TemplateId}
	n := 0
	for _, f := range tr.Fields {
		fn, err := copyField(r, &dr, f.Length)
		n += fn
		if err != nil {
			return dr, n, err
		}
	}
	return dr, n, nil
}

// DecodeOptionsDataRecord is the Options Template analogue of DecodeDataRecord,
// walking scope fields then option fields in order.
func DecodeOptionsDataRecord(r io.Reader, otr *OptionsTemplateRecord) (DataRecord, int, error) {
	dr := DataRecord{TemplateId: otr.TemplateId}
	n := 0
	for _, f := range otr.Scopes {
		fn, err := copyField(r, &dr, f.Length)
		n += fn
		if err != nil {
			return dr, n, err
		}
	}
	for _, f := range otr.Options {
		fn, err := copyField(r, &dr, f.Length)
		n += fn
		if err != nil {
			return dr, n, err
		}
	}
	return dr, n, nil
}

func copyField(r io.Reader, dr *DataRecord, declaredLength uint16) (n int, err error) {
	if IsVariableLength(declaredLength) {
		lb := make([]byte, 1)
		if _, err := io.ReadFull(r, lb); err != nil {
			return n, err
		}
		n++
		dr.Data = append(dr.Data, lb...)

		size := int(lb[0])
		if lb[0] == 0xFF {
			l2 := make([]byte, 2)
			if _, err := io.ReadFull(r, l2); err != nil {
				return n, err
			}
			n += 2
			dr.Data = append(dr.Data, l2...)
			size = int(binary.BigEndian.Uint16(l2))
		}

		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return n, err
		}
		n += size
		dr.Data = append(dr.Data, payload...)
		return n, nil
	}

	payload := make([]byte, declaredLength)
	if _, err := io.ReadFull(r, payload); err != nil {
		return n, err
	}
	n += int(declaredLength)
	dr.Data = append(dr.Data, payload...)
	return n, nil
}
