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
	"testing"

	"github.com/flowkit/ipfix-extender/config"
	"github.com/flowkit/ipfix-extender/filter"
	"github.com/go-logr/logr"

	ipfix "github.com/flowkit/ipfix-extender"
)

// lastSetBody walks out's sets (a 16-byte Message Header followed by
// back-to-back framed sets) and returns the body of the last one, stripping
// its Set Header but keeping any 4-byte padding. Used to locate the Data Set
// an Extend call appended after any Template Set the cache also emitted.
func lastSetBody(t *testing.T, out []byte) []byte {
	t.Helper()
	offset := ipfix.MessageHeaderLength
	var body []byte
	for offset < len(out) {
		setLen := int(binary.BigEndian.Uint16(out[offset+2 : offset+4]))
		body = out[offset+ipfix.SetHeaderLength : offset+setLen]
		offset += setLen
	}
	return body
}

func mustCompile(t *testing.T, expr string) *filter.Expr {
	t.Helper()
	e, err := filter.Compile(ipfix.DefaultIERegistry, expr)
	if err != nil {
		t.Fatalf("compiling %q: %v", expr, err)
	}
	return e
}

// singleInterfaceNameConfig mirrors spec.md §8 scenario 1/2: append
// interfaceName (a STRING), "eth0" when sourceIPv4Address is 192.168.1.1,
// otherwise the empty default.
func singleInterfaceNameConfig(t *testing.T) *config.Config {
	ext := config.Extension{
		Name:     "interfaceName",
		Id:       82,
		DataType: ipfix.String,
		Values: []config.Candidate{
			{Expr: "sourceIPv4Address 192.168.1.1", Value: "eth0", Filter: mustCompile(t, "sourceIPv4Address 192.168.1.1")},
		},
	}
	return &config.Config{
		Extensions:      []config.Extension{ext},
		MaxExtensionLen: 5, // len("eth0") + 1-byte length header
	}
}

func TestExtenderAppendsMatchedValue(t *testing.T) {
	cache := NewTemplateCache(logr.Discard())
	cfg := singleInterfaceNameConfig(t)
	extender := NewExtender(cfg, cache, logr.Discard())

	key := ipfix.NewKey(0, 256)
	tmpl := sourceTemplate256()
	rec := ipfix.DataRecord{TemplateId: 256, Data: []byte{192, 168, 1, 1}}

	builder := NewBuilder(256)
	if err := builder.WriteHeader(&ipfix.Message{Length: 16}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	extended, err := extender.Extend(key, tmpl, rec, builder)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if !extended {
		t.Fatal("expected record to be extended")
	}

	id, open := builder.CurrentDataSet()
	if !open || id != ipfix.NewTemplateIdStart {
		t.Fatalf("expected open data set %d, got id=%d open=%v", ipfix.NewTemplateIdStart, id, open)
	}
	if err := builder.EndDataSet(); err != nil {
		t.Fatalf("EndDataSet: %v", err)
	}

	out, err := builder.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	// The Data Set is the last set the builder wrote (the derived Template
	// Set the cache emitted comes first): original 4 bytes + a 1-byte
	// length prefix + "eth0", then padding to a 4-byte boundary.
	body := lastSetBody(t, out)
	want := append([]byte{192, 168, 1, 1}, 4, 'e', 't', 'h', '0')
	if !bytes.Equal(body[:len(want)], want) {
		t.Fatalf("expected body %v, got %v", want, body[:len(want)])
	}
}

func TestExtenderAppendsDefaultOnNoMatch(t *testing.T) {
	cache := NewTemplateCache(logr.Discard())
	cfg := singleInterfaceNameConfig(t)
	extender := NewExtender(cfg, cache, logr.Discard())

	key := ipfix.NewKey(0, 256)
	tmpl := sourceTemplate256()
	rec := ipfix.DataRecord{TemplateId: 256, Data: []byte{10, 0, 0, 1}}

	builder := NewBuilder(256)
	if err := builder.WriteHeader(&ipfix.Message{Length: 16}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	extended, err := extender.Extend(key, tmpl, rec, builder)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if !extended {
		t.Fatal("expected record to be extended even on no-match (with the default value)")
	}
	if err := builder.EndDataSet(); err != nil {
		t.Fatalf("EndDataSet: %v", err)
	}
	out, err := builder.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	body := lastSetBody(t, out)
	// original(4) + zero-length string header(1) = 5, padded to 8.
	want := append([]byte{10, 0, 0, 1}, 0)
	if !bytes.Equal(body[:5], want) {
		t.Fatalf("expected body prefix %v, got %v", want, body[:5])
	}
}

func TestExtenderReusesOpenDataSetAcrossRecordsOfSameTemplate(t *testing.T) {
	cache := NewTemplateCache(logr.Discard())
	cfg := singleInterfaceNameConfig(t)
	extender := NewExtender(cfg, cache, logr.Discard())

	key := ipfix.NewKey(0, 256)
	tmpl := sourceTemplate256()
	builder := NewBuilder(256)
	if err := builder.WriteHeader(&ipfix.Message{Length: 16}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	for _, ip := range [][]byte{{192, 168, 1, 1}, {10, 0, 0, 1}} {
		rec := ipfix.DataRecord{TemplateId: 256, Data: ip}
		if _, err := extender.Extend(key, tmpl, rec, builder); err != nil {
			t.Fatalf("Extend: %v", err)
		}
	}

	id, open := builder.CurrentDataSet()
	if !open {
		t.Fatal("expected data set to still be open across records of the same template")
	}
	if id != ipfix.NewTemplateIdStart {
		t.Fatalf("expected single data set id %d, got %d", ipfix.NewTemplateIdStart, id)
	}
}
