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

package config_test

import (
	"strings"
	"testing"

	ipfix "github.com/flowkit/ipfix-extender"
	"github.com/flowkit/ipfix-extender/config"
)

const validDoc = `
ids:
  - id: interfaceName
    values:
      - expr: "sourceIPv4Address 192.168.1.1"
        value: eth0
      - expr: "sourceIPv4Address 10.0.0.1"
        value: eth1
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := config.Load(strings.NewReader(validDoc), ipfix.DefaultIERegistry)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Extensions) != 1 {
		t.Fatalf("expected 1 extension, got %d", len(cfg.Extensions))
	}
	ext := cfg.Extensions[0]
	if ext.Name != "interfaceName" || ext.Id != 82 {
		t.Fatalf("expected interfaceName/82, got %s/%d", ext.Name, ext.Id)
	}
	if ext.DataType != ipfix.String {
		t.Fatalf("expected STRING data type, got %s", ext.DataType)
	}
	if len(ext.Values) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(ext.Values))
	}
	// STRING is variable-length: longest literal "eth0"/"eth1" (4 bytes) + 1-byte header.
	if cfg.MaxExtensionLen != 5 {
		t.Fatalf("expected MaxExtensionLen 5, got %d", cfg.MaxExtensionLen)
	}
}

func TestLoadUnknownInformationElement(t *testing.T) {
	doc := `
ids:
  - id: notARealIE
    values:
      - expr: "sourceIPv4Address 192.168.1.1"
        value: eth0
`
	if _, err := config.Load(strings.NewReader(doc), ipfix.DefaultIERegistry); err == nil {
		t.Fatal("expected error for unknown information element")
	}
}

func TestLoadEmptyExprRejected(t *testing.T) {
	doc := `
ids:
  - id: interfaceName
    values:
      - expr: ""
        value: eth0
`
	if _, err := config.Load(strings.NewReader(doc), ipfix.DefaultIERegistry); err == nil {
		t.Fatal("expected error for empty filter expression")
	}
}

func TestLoadEmptyValueRejected(t *testing.T) {
	doc := `
ids:
  - id: interfaceName
    values:
      - expr: "sourceIPv4Address 192.168.1.1"
        value: ""
`
	if _, err := config.Load(strings.NewReader(doc), ipfix.DefaultIERegistry); err == nil {
		t.Fatal("expected error for empty value")
	}
}

func TestLoadInvalidLiteralForDeclaredType(t *testing.T) {
	// sourceTransportPort is unsigned16; "notANumber" cannot be encoded as one.
	doc := `
ids:
  - id: sourceTransportPort
    values:
      - expr: "sourceIPv4Address 192.168.1.1"
        value: "notANumber"
`
	if _, err := config.Load(strings.NewReader(doc), ipfix.DefaultIERegistry); err == nil {
		t.Fatal("expected error for literal that overflows/mismatches the declared data type")
	}
}

func TestLoadRejectsTooManyExtensions(t *testing.T) {
	var b strings.Builder
	b.WriteString("ids:\n")
	for i := 0; i < config.MaxExtensions+1; i++ {
		b.WriteString("  - id: interfaceName\n")
		b.WriteString("    values:\n")
		b.WriteString("      - expr: \"sourceIPv4Address 192.168.1.1\"\n")
		b.WriteString("        value: eth0\n")
	}
	if _, err := config.Load(strings.NewReader(b.String()), ipfix.DefaultIERegistry); err == nil {
		t.Fatal("expected error when extension count exceeds MaxExtensions")
	}
}

func TestLoadRejectsUnknownYAMLFields(t *testing.T) {
	doc := `
ids:
  - id: interfaceName
    unknownField: true
    values:
      - expr: "sourceIPv4Address 192.168.1.1"
        value: eth0
`
	if _, err := config.Load(strings.NewReader(doc), ipfix.DefaultIERegistry); err == nil {
		t.Fatal("expected error for unknown YAML field (KnownFields(true))")
	}
}
