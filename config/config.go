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

// Package config is the in-memory representation of the record extender's
// configuration (spec.md §3 "Configuration" / §4.A "Config model"): an
// ordered list of Extensions, each carrying an ordered list of Candidates
// whose filter expression is evaluated, first match wins, to select the
// value appended for that Extension.
package config

import (
	"fmt"
	"io"

	"github.com/flowkit/ipfix-extender/filter"
	"gopkg.in/yaml.v3"

	ipfix "github.com/flowkit/ipfix-extender"
)

// Limits mirror the original plugin's CONFIG_IDS_MAX / CONFIG_VALUSE_MAX,
// spec.md §3's CONFIG_IDS_MAX / CONFIG_VALUES_MAX.
const (
	MaxExtensions             = 32
	MaxCandidatesPerExtension = 16
)

// rawConfig is the YAML document shape, matching spec.md §6's schema
// verbatim (ids[].id, ids[].values[].expr, ids[].values[].value) while using
// YAML instead of the XML shown there, per SPEC_FULL.md §7 (YAML is the
// teacher's own configuration serialization format; spec.md's XML block is a
// schema, not a syntax mandate).
type rawConfig struct {
	Ids []rawExtension `yaml:"ids"`
}

type rawExtension struct {
	Id     string       `yaml:"id"`
	Values []rawCandidate `yaml:"values"`
}

type rawCandidate struct {
	Expr  string `yaml:"expr"`
	Value string `yaml:"value"`
}

// Candidate is one (filter, literal) pair of an Extension. Filter is the
// compiled expression; Expr and Value are retained for logging/diagnostics.
type Candidate struct {
	Expr   string
	Value  string
	Filter *filter.Expr
}

// Extension is one configured Information Element to append to every Data
// Record, plus its ordered candidate values.
type Extension struct {
	Name     string
	Id       uint16
	DataType ipfix.DataType
	Values   []Candidate
}

// Config is the immutable-after-load configuration described by spec.md §3.
type Config struct {
	Extensions []Extension

	// MaxExtensionLen is the worst-case number of bytes this configuration can
	// append to a single Data Record, derived per spec.md §3's formula.
	MaxExtensionLen int
}

// Load decodes a YAML configuration document from r, resolving every
// Extension's name against registry and compiling every Candidate's filter
// expression, failing on the first error exactly as spec.md §7
// ("Configuration errors are fatal at init") requires.
func Load(r io.Reader, registry ipfix.IERegistry) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw rawConfig
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing extender configuration: %w", err)
	}

	if len(raw.Ids) > MaxExtensions {
		return nil, fmt.Errorf("%d extensions configured, exceeds limit of %d", len(raw.Ids), MaxExtensions)
	}

	cfg := &Config{
		Extensions: make([]Extension, 0, len(raw.Ids)),
	}

	for _, rawExt := range raw.Ids {
		ext, err := loadExtension(rawExt, registry)
		if err != nil {
			return nil, err
		}
		cfg.Extensions = append(cfg.Extensions, ext)
	}

	cfg.MaxExtensionLen = computeMaxExtensionLen(cfg.Extensions)
	return cfg, nil
}

func loadExtension(rawExt rawExtension, registry ipfix.IERegistry) (Extension, error) {
	if rawExt.Id == "" {
		return Extension{}, fmt.Errorf("extension id (IE name) must not be empty")
	}
	if len(rawExt.Values) > MaxCandidatesPerExtension {
		return Extension{}, fmt.Errorf("extension %q has %d candidate values, exceeds limit of %d",
			rawExt.Id, len(rawExt.Values), MaxCandidatesPerExtension)
	}

	ie, ok := registry.LookupByName(rawExt.Id)
	if !ok {
		return Extension{}, fmt.Errorf("unknown information element %q (make sure case is correct)", rawExt.Id)
	}
	if size, variable := ie.DataType.Size(); size == 0 && !variable {
		return Extension{}, fmt.Errorf("information element %q has unsupported data type %q", rawExt.Id, ie.DataType)
	}

	ext := Extension{
		Name:     rawExt.Id,
		Id:       ie.Id,
		DataType: ie.DataType,
		Values:   make([]Candidate, 0, len(rawExt.Values)),
	}

	for _, rawCand := range rawExt.Values {
		cand, err := loadCandidate(rawExt.Id, rawCand, ext.DataType, registry)
		if err != nil {
			return Extension{}, err
		}
		ext.Values = append(ext.Values, cand)
	}

	return ext, nil
}

func loadCandidate(extName string, rawCand rawCandidate, dataType ipfix.DataType, registry ipfix.IERegistry) (Candidate, error) {
	if rawCand.Expr == "" {
		return Candidate{}, fmt.Errorf("extension %q: filter expression must not be empty", extName)
	}
	if rawCand.Value == "" {
		return Candidate{}, fmt.Errorf("extension %q: value must not be empty", extName)
	}
	// Resolved at config-load time, per spec.md §9's recommendation that
	// overflow/format errors on the literal be rejected rather than silently
	// truncated or zeroed at encode time.
	if err := dataType.ValidateLiteral(rawCand.Value); err != nil {
		return Candidate{}, fmt.Errorf("extension %q: value %q is not a valid %s literal: %w",
			extName, rawCand.Value, dataType, err)
	}

	expr, err := filter.Compile(registry, rawCand.Expr)
	if err != nil {
		return Candidate{}, fmt.Errorf("extension %q: compiling filter %q: %w", extName, rawCand.Expr, err)
	}

	return Candidate{Expr: rawCand.Expr, Value: rawCand.Value, Filter: expr}, nil
}

// computeMaxExtensionLen implements spec.md §3's derivation: the sum, over
// Extensions, of the fixed-width size, or for variable-length types the
// longest configured literal plus its 1-or-3-byte length header.
func computeMaxExtensionLen(extensions []Extension) int {
	total := 0
	for _, ext := range extensions {
		width, variable := ext.DataType.Size()
		if !variable {
			total += int(width)
			continue
		}

		maxLit := 0
		for _, cand := range ext.Values {
			if l := len(cand.Value); l > maxLit {
				maxLit = l
			}
		}
		if maxLit < 255 {
			total += maxLit + 1
		} else {
			total += maxLit + 3
		}
	}
	return total
}
