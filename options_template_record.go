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

// OptionsTemplateRecord is a parsed Options Template record. The engine never
// derives an extended template from one: Data Sets referencing an Options
// Template are detected and their records are skipped, per the scope/options
// split being out of this module's extension semantics.
type OptionsTemplateRecord struct {
	TemplateId      uint16 `json:"templateId" yaml:"templateId"`
	FieldCount      uint16 `json:"fieldCount" yaml:"fieldCount"`
	ScopeFieldCount uint16 `json:"scopeFieldCount" yaml:"scopeFieldCount"`

	Scopes  []FieldSpecifier `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	Options []FieldSpecifier `json:"options,omitempty" yaml:"options,omitempty"`
}

var _ templateRecord = &OptionsTemplateRecord{}
var _ fmt.Stringer = &OptionsTemplateRecord{}

func (otr *OptionsTemplateRecord) String() string {
	scs := make([]string, 0, len(otr.Scopes))
	for _, scope := range otr.Scopes {
		scs = append(scs, scope.String())
	}
	os := make([]string, 0, len(otr.Options))
	for _, option := range otr.Options {
		os = append(os, option.String())
	}
	return fmt.Sprintf("<id=%d,len=%d>[scopes:%v options:%v]", otr.TemplateId, otr.FieldCount, scs, os)
}

func (otr *OptionsTemplateRecord) Type() string {
	return KindOptionsTemplateSet
}

func (otr *OptionsTemplateRecord) Id() uint16 {
	return otr.TemplateId
}

func (otr *OptionsTemplateRecord) Length() uint16 {
	l := uint16(6)
	for _, f := range otr.Scopes {
		l += uint16(f.WireLength())
	}
	for _, f := range otr.Options {
		l += uint16(f.WireLength())
	}
	return l
}

func (otr *OptionsTemplateRecord) Decode(r io.Reader) (n int, err error) {
	b := make([]byte, 2)
	m, err := io.ReadFull(r, b)
	n += m
	if err != nil {
		return n, err
	}
	otr.TemplateId = binary.BigEndian.Uint16(b)

	m, err = io.ReadFull(r, b)
	n += m
	if err != nil {
		return n, err
	}
	otr.FieldCount = binary.BigEndian.Uint16(b)

	m, err = io.ReadFull(r, b)
	n += m
	if err != nil {
		return n, err
	}
	otr.ScopeFieldCount = binary.BigEndian.Uint16(b)
	if otr.ScopeFieldCount == 0 {
		return n, errors.New("options template record scope field count must not be zero")
	}

	otr.Scopes = make([]FieldSpecifier, 0, int(otr.ScopeFieldCount))
	for i := 0; i < int(otr.ScopeFieldCount); i++ {
		f, m, err := decodeFieldSpecifier(r)
		n += m
		if err != nil {
			return n, err
		}
		otr.Scopes = append(otr.Scopes, f)
	}

	optionsSize := int(otr.FieldCount) - int(otr.ScopeFieldCount)
	if optionsSize < 0 {
		return n, errors.New("negative length options template record")
	}
	otr.Options = make([]FieldSpecifier, 0, optionsSize)
	for i := 0; i < optionsSize; i++ {
		f, m, err := decodeFieldSpecifier(r)
		n += m
		if err != nil {
			return n, err
		}
		otr.Options = append(otr.Options, f)
	}

	return n, nil
}

func (otr *OptionsTemplateRecord) Encode(w io.Writer) (n int, err error) {
	b := make([]byte, 0, 6)
	b = binary.BigEndian.AppendUint16(b, otr.TemplateId)
	b = binary.BigEndian.AppendUint16(b, otr.FieldCount)
	b = binary.BigEndian.AppendUint16(b, otr.ScopeFieldCount)
	ln, err := w.Write(b)
	n += ln
	if err != nil {
		return n, err
	}
	for _, f := range otr.Scopes {
		fn, err := f.Encode(w)
		n += fn
		if err != nil {
			return n, err
		}
	}
	for _, f := range otr.Options {
		fn, err := f.Encode(w)
		n += fn
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
