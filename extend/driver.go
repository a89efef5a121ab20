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
	"context"
	"fmt"

	"github.com/go-logr/logr"

	ipfix "github.com/flowkit/ipfix-extender"
)

// bufferSlack is extra headroom reserved for Template Set headers the
// message doesn't carry yet, per spec.md §5's "slack covers Template Set
// headers".
const bufferSlack = 4096

// Driver is the pipeline driver of spec.md §4.E (component E): it walks an
// input Message's Sets, copies non-data sets verbatim, drives an Extender
// over every Data Record of every Data Set, and finalizes the output.
type Driver struct {
	extender *Extender
	logger   logr.Logger
}

// NewDriver builds a Driver over extender.
func NewDriver(extender *Extender, logger logr.Logger) *Driver {
	return &Driver{extender: extender, logger: logger}
}

// Process walks msg's sets (decoded against templateCache, which must be
// the same TemplateCache msg was decoded with, so Data Sets can be resolved
// back to their governing Template) and returns the serialized, extended
// output message. A nil return with a nil error means the output message
// was header-only and must be discarded rather than forwarded, per spec.md
// §4.E.
func (d *Driver) Process(ctx context.Context, msg *ipfix.Message, templateCache ipfix.TemplateCache) ([]byte, error) {
	drecCnt := 0
	for _, s := range msg.Sets {
		if s.Kind == ipfix.KindDataSet {
			drecCnt += len(s.Records)
		}
	}

	capacity := int(msg.Length) + d.extender.cfg.MaxExtensionLen*drecCnt + bufferSlack
	builder := NewBuilder(capacity)
	if err := builder.WriteHeader(msg); err != nil {
		return nil, err
	}

	for _, s := range msg.Sets {
		if s.Kind != ipfix.KindDataSet {
			if err := builder.CopySet(encodeVerbatimSet(s)); err != nil {
				return nil, err
			}
			continue
		}

		key := ipfix.NewKey(msg.ObservationDomainId, s.Id)
		tmpl, err := templateCache.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("resolving template for data set %d: %w", s.Id, err)
		}

		for _, rec := range s.Records {
			if _, err := d.extender.Extend(key, tmpl, rec, builder); err != nil {
				if err == ErrBufferExhausted {
					ipfix.DroppedRecords.WithLabelValues(ipfix.KindDataSet).Inc()
				}
				return nil, err
			}
		}

		// Force a set boundary at the end of every input Data Set, even if
		// the next input Data Set maps to the same extended Template id
		// (spec.md §8 scenario 5: two input Data Sets stay two output Data
		// Sets, never merged).
		if _, open := builder.CurrentDataSet(); open {
			if err := builder.EndDataSet(); err != nil {
				return nil, err
			}
		}
	}

	out, err := builder.Finish()
	if err != nil {
		return nil, err
	}
	if builder.IsEmpty() {
		return nil, nil
	}
	return out, nil
}

// encodeVerbatimSet reproduces a decoded Set's exact on-wire bytes (header
// and body), used to copy non-data sets unchanged.
func encodeVerbatimSet(s *ipfix.Set) []byte {
	buf := &bytes.Buffer{}
	_, _ = s.SetHeader.Encode(buf)
	buf.Write(s.Raw)
	return buf.Bytes()
}
