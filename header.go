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
	"io"
)

const (
	// IPFIX is the Set ID denoting a Template Set.
	IPFIX uint16 = 2
	// IPFIXOptions is the Set ID denoting an Options Template Set.
	IPFIXOptions uint16 = 3
	// MinDataSetId is the first Set ID that may be used as a Data Set identifier / Template ID.
	MinDataSetId uint16 = 256

	// MessageHeaderLength is the fixed size, in bytes, of the IPFIX Message Header (RFC 7011 §3.1).
	MessageHeaderLength int = 16
	// SetHeaderLength is the fixed size, in bytes, of a Set Header (RFC 7011 §3.3.2).
	SetHeaderLength int = 4
	// FieldSpecifierLength is the size, in bytes, of a (non-enterprise) field specifier in a Template.
	FieldSpecifierLength int = 4
	// EnterpriseNumberLength is the size, in bytes, of the Enterprise Number trailing an enterprise field specifier.
	EnterpriseNumberLength int = 4

	// EnterpriseBit marks an IE id as enterprise-specific when set.
	EnterpriseBit uint16 = 0x8000

	// VariableLength is the sentinel Length value in a Template field specifier denoting a
	// variable-length encoded field.
	VariableLength uint16 = 0xFFFF

	// NewTemplateIdStart is the first Template ID handed out for derived, extended templates.
	// IDs are assigned sequentially starting here to avoid collision with Template IDs already
	// in use by upstream exporters.
	NewTemplateIdStart uint16 = 40000
)

// SetHeader is the 4-byte header prefixing every Set in an IPFIX Message.
type SetHeader struct {
	// Id is 2 for a Template Set, 3 for an Options Template Set, and 256-65535 for a Data Set,
	// in which case it doubles as the Template ID describing the Set's Data Records.
	Id uint16 `json:"id,omitempty"`

	// Length is the total size of the Set, header included, padded to a 4-byte boundary.
	Length uint16 `json:"length,omitempty"`
}

func (sh *SetHeader) Decode(r io.Reader) (n int, err error) {
	t := make([]byte, 2)
	n, err = io.ReadFull(r, t)
	if err != nil {
		return n, err
	}
	sh.Id = binary.BigEndian.Uint16(t)

	m, err := io.ReadFull(r, t)
	n += m
	if err != nil {
		return n, err
	}
	sh.Length = binary.BigEndian.Uint16(t)
	return n, nil
}

func (sh *SetHeader) Encode(w io.Writer) (n int, err error) {
	b := make([]byte, 0, SetHeaderLength)
	b = binary.BigEndian.AppendUint16(b, sh.Id)
	b = binary.BigEndian.AppendUint16(b, sh.Length)

	return w.Write(b)
}

// IsDataSet reports whether a Set ID refers to a Data Set rather than a (Options) Template Set.
func IsDataSet(setId uint16) bool {
	return setId >= MinDataSetId
}

// IsEnterpriseField reports whether the top bit of a raw field id marks it as enterprise-specific.
func IsEnterpriseField(rawFieldId uint16) bool {
	return rawFieldId&EnterpriseBit != 0
}

// IsVariableLength reports whether a Template-declared field length is the variable-length sentinel.
func IsVariableLength(fieldLength uint16) bool {
	return fieldLength == VariableLength
}
