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

	"github.com/flowkit/ipfix-extender/config"
	"github.com/flowkit/ipfix-extender/filter"
	"github.com/go-logr/logr"

	ipfix "github.com/flowkit/ipfix-extender"
)

// Extender is the per-record orchestrator of spec.md §4.D (component D): it
// resolves the extended Template via the TemplateCache, makes sure the
// right Data Set is open, copies the original record bytes, and appends one
// encoded value per configured Extension.
type Extender struct {
	cfg    *config.Config
	cache  *TemplateCache
	logger logr.Logger
}

// NewExtender builds an Extender over cfg, using cache to derive/reuse
// extended Templates.
func NewExtender(cfg *config.Config, cache *TemplateCache, logger logr.Logger) *Extender {
	return &Extender{cfg: cfg, cache: cache, logger: logger}
}

// Extend processes one Data Record governed by tmpl (the original, input
// Template for key), appending its extended form to builder. It returns
// (false, nil) when the record was skipped (Options Template, per spec.md
// §4.D step 1) rather than extended.
func (x *Extender) Extend(key ipfix.TemplateKey, tmpl *ipfix.Template, rec ipfix.DataRecord, builder *Builder) (extended bool, err error) {
	newTr, err := x.cache.Resolve(key, tmpl, x.cfg.Extensions, builder)
	if err != nil {
		return false, err
	}
	if newTr == nil {
		return false, nil
	}

	oldTr, _ := tmpl.Record.(*ipfix.TemplateRecord)

	targetId := newTr.TemplateId
	if id, open := builder.CurrentDataSet(); !open || id != targetId {
		if open {
			if err := builder.EndDataSet(); err != nil {
				return false, err
			}
		}
		if err := builder.BeginDataSet(targetId); err != nil {
			return false, err
		}
	}

	if _, err := builder.Write(rec.Data); err != nil {
		return false, err
	}

	for _, ext := range x.cfg.Extensions {
		matched, value := evaluateExtension(ext, oldTr, rec.Data)

		buf := &bytes.Buffer{}
		if matched {
			if _, err := ext.DataType.EncodeLiteral(buf, value); err != nil {
				return false, err
			}
			ipfix.ExtendedRecords.WithLabelValues(ext.Name).Inc()
		} else {
			if _, err := ext.DataType.EncodeDefault(buf); err != nil {
				return false, err
			}
		}

		if _, err := builder.Write(buf.Bytes()); err != nil {
			return false, err
		}
	}

	return true, nil
}

// evaluateExtension scans ext's Candidates in declared order, returning the
// value of the first whose filter matches data (governed by oldTr), per
// spec.md §4.D step 4. If none match, matched is false and value is "".
func evaluateExtension(ext config.Extension, oldTr *ipfix.TemplateRecord, data []byte) (matched bool, value string) {
	for _, cand := range ext.Values {
		result, err := cand.Filter.Evaluate(oldTr, data, locateField)
		if err != nil {
			continue
		}
		if result == filter.Match {
			return true, cand.Value
		}
	}
	return false, ""
}

// locateField walks oldTr's field specifiers over data to find the byte
// range of the first field matching (ieId, pen), following the same
// 1-or-3-byte variable-length framing data_record.go's decode loop uses,
// without allocating a decoded value.
func locateField(oldTr *ipfix.TemplateRecord, data []byte, ieId uint16, pen uint32) ([]byte, bool) {
	offset := 0
	for _, f := range oldTr.Fields {
		var field []byte
		if ipfix.IsVariableLength(f.Length) {
			if offset >= len(data) {
				return nil, false
			}
			size := int(data[offset])
			consumed := 1
			if data[offset] == 0xFF {
				if offset+3 > len(data) {
					return nil, false
				}
				size = int(binary.BigEndian.Uint16(data[offset+1 : offset+3]))
				consumed = 3
			}
			start := offset + consumed
			if start+size > len(data) {
				return nil, false
			}
			field = data[start : start+size]
			offset = start + size
		} else {
			if offset+int(f.Length) > len(data) {
				return nil, false
			}
			field = data[offset : offset+int(f.Length)]
			offset += int(f.Length)
		}

		if f.Id == ieId && f.EnterpriseNumber == pen {
			return field, true
		}
	}
	return nil, false
}
