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
	"fmt"

	"github.com/flowkit/ipfix-extender/iana/semantics"
	"github.com/flowkit/ipfix-extender/iana/status"
)

// InformationElement is a named, typed IPFIX field definition, the IE
// manager collaborator of spec.md §6. Extensions in config reference one of
// these by name; the engine resolves id/type once at load time and never
// needs the full IANA metadata (units, references, revisions) the teacher's
// decoder tracks for documentation purposes.
type InformationElement struct {
	Id           uint16             `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string             `json:"name,omitempty" yaml:"name,omitempty"`
	EnterpriseId uint32             `json:"pen,omitempty" yaml:"pen,omitempty"`
	DataType     DataType           `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	Semantics    semantics.Semantic `json:"semantics,omitempty" yaml:"semantics,omitempty"`
	Status       status.Status      `json:"status,omitempty" yaml:"status,omitempty"`
}

func (i InformationElement) String() string {
	return fmt.Sprintf("%s(id=%d,pen=%d,type=%s)", i.Name, i.Id, i.EnterpriseId, i.DataType)
}

// IERegistry resolves Information Element names and ids to their full
// definition. It is the "IE manager" collaborator spec.md §6 treats as an
// external dependency; this module provides a concrete, embedded-CSV backed
// implementation rather than leaving it abstract, since the module must be
// runnable standalone.
type IERegistry interface {
	LookupByName(name string) (InformationElement, bool)
	LookupById(enterpriseId uint32, id uint16) (InformationElement, bool)
}

type memoryIERegistry struct {
	byName map[string]InformationElement
	byId   map[ieKey]InformationElement
}

type ieKey struct {
	enterpriseId uint32
	id           uint16
}

func (r *memoryIERegistry) LookupByName(name string) (InformationElement, bool) {
	ie, ok := r.byName[name]
	return ie, ok
}

func (r *memoryIERegistry) LookupById(enterpriseId uint32, id uint16) (InformationElement, bool) {
	ie, ok := r.byId[ieKey{enterpriseId, id}]
	return ie, ok
}
