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

package filter_test

import (
	"testing"

	ipfix "github.com/flowkit/ipfix-extender"
	"github.com/flowkit/ipfix-extender/filter"
)

// sourceIPv4Address template: a single 4-byte field.
func sourceTemplate() *ipfix.TemplateRecord {
	return &ipfix.TemplateRecord{
		TemplateId: 256,
		FieldCount: 1,
		Fields:     []ipfix.FieldSpecifier{{Id: 8, Length: 4}},
	}
}

func locate(tmpl *ipfix.TemplateRecord, data []byte, ieId uint16, pen uint32) ([]byte, bool) {
	offset := 0
	for _, f := range tmpl.Fields {
		field := data[offset : offset+int(f.Length)]
		offset += int(f.Length)
		if f.Id == ieId && f.EnterpriseNumber == pen {
			return field, true
		}
	}
	return nil, false
}

func TestCompileAndEvaluateShorthandEquality(t *testing.T) {
	expr, err := filter.Compile(ipfix.DefaultIERegistry, "sourceIPv4Address 192.168.1.1")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	match := []byte{192, 168, 1, 1}
	result, err := expr.Evaluate(sourceTemplate(), match, locate)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != filter.Match {
		t.Fatalf("expected Match, got %v", result)
	}

	noMatch := []byte{10, 0, 0, 1}
	result, err = expr.Evaluate(sourceTemplate(), noMatch, locate)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != filter.NoMatch {
		t.Fatalf("expected NoMatch, got %v", result)
	}
}

func TestCompileUnknownIE(t *testing.T) {
	if _, err := filter.Compile(ipfix.DefaultIERegistry, "notARealInformationElement 1"); err == nil {
		t.Fatal("expected error for unknown IE name")
	}
}

func TestCompileEmptyExpression(t *testing.T) {
	if _, err := filter.Compile(ipfix.DefaultIERegistry, "   "); err == nil {
		t.Fatal("expected error for empty expression")
	}
}

func TestEvaluateWithExplicitOperator(t *testing.T) {
	tmpl := &ipfix.TemplateRecord{
		TemplateId: 257,
		FieldCount: 1,
		Fields:     []ipfix.FieldSpecifier{{Id: 7, Length: 2}}, // sourceTransportPort
	}
	expr, err := filter.Compile(ipfix.DefaultIERegistry, "sourceTransportPort > 1024")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	high := []byte{0x1F, 0x90} // 8080
	result, err := expr.Evaluate(tmpl, high, locate)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != filter.Match {
		t.Fatalf("expected Match for port 8080 > 1024, got %v", result)
	}

	low := []byte{0x00, 0x50} // 80
	result, err = expr.Evaluate(tmpl, low, locate)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != filter.NoMatch {
		t.Fatalf("expected NoMatch for port 80 > 1024, got %v", result)
	}
}

func TestEvaluateAndOr(t *testing.T) {
	tmpl := &ipfix.TemplateRecord{
		TemplateId: 258,
		FieldCount: 2,
		Fields: []ipfix.FieldSpecifier{
			{Id: 8, Length: 4},  // sourceIPv4Address
			{Id: 7, Length: 2},  // sourceTransportPort
		},
	}
	expr, err := filter.Compile(ipfix.DefaultIERegistry, "sourceIPv4Address 192.168.1.1 and sourceTransportPort 80")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	data := append([]byte{192, 168, 1, 1}, 0x00, 0x50)
	result, err := expr.Evaluate(tmpl, data, locate)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != filter.Match {
		t.Fatalf("expected Match, got %v", result)
	}

	data[5] = 0x51 // port 81
	result, err = expr.Evaluate(tmpl, data, locate)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != filter.NoMatch {
		t.Fatalf("expected NoMatch, got %v", result)
	}
}
