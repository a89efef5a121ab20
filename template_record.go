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
	"errors"
	"fmt"
	"io"
)

// FieldSpecifier is one (IE id, length[, enterprise number]) entry of a Template
// or Options Template record. It carries no decoded value; the engine only ever
// needs the specifier to size and re-derive templates.
type FieldSpecifier struct {
	Id               uint16 `json:"id" yaml:"id"`
	Length           uint16 `json:"length" yaml:"length"`
	EnterpriseNumber uint32 `json:"enterpriseNumber,omitempty" yaml:"enterpriseNumber,omitempty"`
}

func (f FieldSpecifier) Enterprise() bool {
	return f.EnterpriseNumber != 0
}

func (f FieldSpecifier) String() string {
	if f.Enterprise() {
		return fmt.Sprintf("%d[%d]/%d", f.Id, f.EnterpriseNumber, f.Length)
	}
	return fmt.Sprintf("%d/%d", f.Id, f.Length)
}

// WireLength is the size, in bytes, this specifier occupies inside a Template record.
func (f FieldSpecifier) WireLength() int {
	if f.Enterprise() {
		return FieldSpecifierLength + EnterpriseNumberLength
	}
	return FieldSpecifierLength
}

func (f FieldSpecifier) Encode(w io.Writer) (n int, err error) {
	b := make([]byte, 0, FieldSpecifierLength+EnterpriseNumberLength)
	if f.Enterprise() {
		b = binary.BigEndian.AppendUint16(b, EnterpriseBit|f.Id)
	} else {
		b = binary.BigEndian.AppendUint16(b, f.Id)
	}
	b = binary.BigEndian.AppendUint16(b, f.Length)
	if f.Enterprise() {
		b = binary.BigEndian.AppendUint32(b, f.EnterpriseNumber)
	}
	return w.Write(b)
}

func decodeFieldSpecifier(r io.Reader) (f FieldSpecifier, n int, err error) {
	b := make([]byte, 2)
	m, err := io.ReadFull(r, b)
	n += m
	if err != nil {
		return f, n, err
	}
	rawId := binary.BigEndian.Uint16(b)
	f.Id = rawId &^ EnterpriseBit

	m, err = io.ReadFull(r, b)
	n += m
	if err != nil {
		return f, n, err
	}
	f.Length = binary.BigEndian.Uint16(b)

	if IsEnterpriseField(rawId) {
		eb := make([]byte, EnterpriseNumberLength)
		m, err = io.ReadFull(r, eb)
		n += m
		if err != nil {
			return f, n, err
		}
		f.EnterpriseNumber = binary.BigEndian.Uint32(eb)
	}

	return f, n, nil
}

// TemplateRecord is a parsed Template record: a Template ID and its ordered field
// specifiers. It never decodes the Data Records that reference it; the engine
// copies their bytes verbatim and only consults specifiers for sizing.
type TemplateRecord struct {
	TemplateId uint16           `json:"templateId" yaml:"templateId"`
	FieldCount uint16           `json:"fieldCount" yaml:"fieldCount"`
	Fields     []FieldSpecifier `json:"fields,omitempty" yaml:"fields,omitempty"`
}

var _ templateRecord = &TemplateRecord{}
var _ fmt.Stringer = &TemplateRecord{}

func (tr *TemplateRecord) String() string {
	sl := make([]string, 0, len(tr.Fields))
	for _, f := range tr.Fields {
		sl = append(sl, f.String())
	}
	return fmt.Sprintf("<id=%d,len=%d>%v", tr.TemplateId, tr.FieldCount, sl)
}

func (tr *TemplateRecord) Type() string {
	return KindTemplateSet
}

func (tr *TemplateRecord) Id() uint16 {
	return tr.TemplateId
}

// Length is the on-wire size of the template record, header included.
func (tr *TemplateRecord) Length() uint16 {
	l := uint16(4)
	for _, f := range tr.Fields {
		l += uint16(f.WireLength())
	}
	return l
}

func (tr *TemplateRecord) Encode(w io.Writer) (n int, err error) {
	b := make([]byte, 0, 4)
	b = binary.BigEndian.AppendUint16(b, tr.TemplateId)
	b = binary.BigEndian.AppendUint16(b, tr.FieldCount)
	ln, err := w.Write(b)
	n += ln
	if err != nil {
		return n, err
	}
	for _, f := range tr.Fields {
		fn, err := f.Encode(w)
		n += fn
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (tr *TemplateRecord) Decode(r io.Reader) (n int, err error) {
	b := make([]byte, 2)
	m, err := io.ReadFull(r, b)
	n += m
	if err != nil {
		return n, err
	}
	tr.TemplateId = binary.BigEndian.Uint16(b)

	m, err = io.ReadFull(r, b)
	n += m
	if err != nil {
		return n, err
	}
	tr.FieldCount = binary.BigEndian.Uint16(b)
	if tr.FieldCount == 0 {
		return n, errors.New("template record field count must not be zero")
	}

	tr.Fields = make([]FieldSpecifier, 0, int(tr.FieldCount))
	for i := 0; i < int(tr.FieldCount); i++ {
		f, m, err := decodeFieldSpecifier(r)
		n += m
		if err != nil {
			return n, err
		}
		tr.Fields = append(tr.Fields, f)
	}
	return n, nil
}
