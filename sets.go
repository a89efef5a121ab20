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
	"bytes"
	"context"
	"fmt"
	"io"
)

// The Kind* constants denote what a decoded Set's body was parsed as.
const (
	KindDataSet            string = "DataSet"
	KindTemplateSet        string = "TemplateSet"
	KindOptionsTemplateSet string = "OptionsTemplateSet"
)

// Set is one decoded Set from an IPFIX message. Non-data sets are fully
// parsed into Templates/OptionsTemplates (the extend engine needs their field
// specifiers to derive extensions) and also keep Raw, their exact on-wire
// body, so callers that only forward them never need to re-encode anything.
// Data Sets are kept as raw Data Records rather than decoded field-by-field,
// matching spec.md §4.E's pointer/range-based record membership model.
type Set struct {
	SetHeader

	Kind string `json:"kind,omitempty"`

	// Raw is the set body as it appeared on the wire (header excluded,
	// padding included). Populated for every set kind.
	Raw []byte `json:"-"`

	Templates        []TemplateRecord        `json:"templates,omitempty"`
	OptionsTemplates []OptionsTemplateRecord  `json:"optionsTemplates,omitempty"`
	Records          []DataRecord             `json:"records,omitempty"`
}

var _ fmt.Stringer = &Set{}

func (s *Set) String() string {
	switch s.Kind {
	case KindTemplateSet:
		return fmt.Sprintf("TemplateSet<id=%d,len=%d>%v", s.Id, s.Length, s.Templates)
	case KindOptionsTemplateSet:
		return fmt.Sprintf("OptionsTemplateSet<id=%d,len=%d>%v", s.Id, s.Length, s.OptionsTemplates)
	default:
		return fmt.Sprintf("DataSet<id=%d,len=%d,records=%d>", s.Id, s.Length, len(s.Records))
	}
}

// DecodeSet reads one Set (header and body) from r. cache resolves the
// Template governing a Data Set's records; it is also populated with any
// Template/Options Template records found, so later sets in the same message
// can reference templates defined earlier in it.
func DecodeSet(r io.Reader, observationDomainId uint32, cache TemplateCache) (*Set, int, error) {
	sh := SetHeader{}
	n, err := sh.Decode(r)
	if err != nil {
		return nil, n, err
	}
	if sh.Length < uint16(SetHeaderLength) {
		return nil, n, fmt.Errorf("%w: set length %d shorter than header", ErrMalformedTemplate, sh.Length)
	}

	body := make([]byte, int(sh.Length)-SetHeaderLength)
	m, err := io.ReadFull(r, body)
	n += m
	if err != nil {
		return nil, n, err
	}

	s := &Set{SetHeader: sh, Raw: body}

	switch {
	case sh.Id == IPFIX:
		s.Kind = KindTemplateSet
		s.Templates = decodeTemplateRecords(body)
		DecodedSets.WithLabelValues(KindTemplateSet).Inc()
		for i := range s.Templates {
			tr := s.Templates[i]
			_ = cache.Add(context.Background(), NewKey(observationDomainId, tr.TemplateId), &Template{
				TemplateMetadata: &TemplateMetadata{TemplateId: tr.TemplateId, ObservationDomainId: observationDomainId},
				Record:           &s.Templates[i],
				Raw:              encodeRecord(&tr),
			})
		}
	case sh.Id == IPFIXOptions:
		s.Kind = KindOptionsTemplateSet
		s.OptionsTemplates = decodeOptionsTemplateRecords(body)
		DecodedSets.WithLabelValues(KindOptionsTemplateSet).Inc()
		for i := range s.OptionsTemplates {
			otr := s.OptionsTemplates[i]
			_ = cache.Add(context.Background(), NewKey(observationDomainId, otr.TemplateId), &Template{
				TemplateMetadata: &TemplateMetadata{TemplateId: otr.TemplateId, ObservationDomainId: observationDomainId},
				Record:           &s.OptionsTemplates[i],
				Raw:              encodeRecord(&otr),
			})
		}
	default:
		s.Kind = KindDataSet
		tmpl, err := cache.Get(context.Background(), NewKey(observationDomainId, sh.Id))
		if err != nil {
			return s, n, fmt.Errorf("data set %d: %w", sh.Id, err)
		}
		s.Records, err = decodeDataRecords(body, tmpl)
		if err != nil {
			return s, n, err
		}
		DecodedSets.WithLabelValues(KindDataSet).Inc()
		DecodedRecords.WithLabelValues(KindDataSet).Add(float64(len(s.Records)))
	}

	return s, n, nil
}

func decodeTemplateRecords(body []byte) []TemplateRecord {
	out := make([]TemplateRecord, 0, 1)
	br := bytes.NewReader(body)
	for br.Len() >= 4 {
		tr := TemplateRecord{}
		if _, err := tr.Decode(br); err != nil {
			break
		}
		out = append(out, tr)
	}
	return out
}

func decodeOptionsTemplateRecords(body []byte) []OptionsTemplateRecord {
	out := make([]OptionsTemplateRecord, 0, 1)
	br := bytes.NewReader(body)
	for br.Len() >= 6 {
		otr := OptionsTemplateRecord{}
		if _, err := otr.Decode(br); err != nil {
			break
		}
		out = append(out, otr)
	}
	return out
}

func decodeDataRecords(body []byte, tmpl *Template) ([]DataRecord, error) {
	out := make([]DataRecord, 0, 1)
	br := bytes.NewReader(body)

	minLen := func() int {
		switch t := tmpl.Record.(type) {
		case *TemplateRecord:
			min := 0
			for _, f := range t.Fields {
				if IsVariableLength(f.Length) {
					min++
				} else {
					min += int(f.Length)
				}
			}
			return min
		case *OptionsTemplateRecord:
			min := 0
			for _, f := range t.Scopes {
				if IsVariableLength(f.Length) {
					min++
				} else {
					min += int(f.Length)
				}
			}
			for _, f := range t.Options {
				if IsVariableLength(f.Length) {
					min++
				} else {
					min += int(f.Length)
				}
			}
			return min
		default:
			return 0
		}
	}()

	for br.Len() >= minLen && minLen > 0 {
		// A Set's body is zero-padded to a 4-byte boundary (header.go's
		// SetHeaderLength framing); for templates whose record size is below
		// that padding, the remaining bytes can look like one more record.
		// Bail out once what's left is shorter than a full set-alignment unit
		// and entirely zero, rather than decode it as a spurious record.
		if rem := br.Len(); rem < 4 && isZeroPadding(body[len(body)-rem:]) {
			break
		}

		var dr DataRecord
		var err error
		switch t := tmpl.Record.(type) {
		case *TemplateRecord:
			dr, _, err = DecodeDataRecord(br, t)
		case *OptionsTemplateRecord:
			dr, _, err = DecodeOptionsDataRecord(br, t)
		}
		if err != nil {
			return out, fmt.Errorf("failed to decode data record, %w", err)
		}
		out = append(out, dr)
	}
	return out, nil
}

// isZeroPadding reports whether b (shorter than the 4-byte set alignment
// unit) is entirely zero, the shape of trailing Set padding rather than a
// genuine Data Record.
func isZeroPadding(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func encodeRecord(tr templateRecord) []byte {
	buf := &bytes.Buffer{}
	_, _ = tr.Encode(buf)
	return buf.Bytes()
}
