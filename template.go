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
	"io"
	"time"
)

// templateRecord is the interface TemplateRecord and OptionsTemplateRecord both
// satisfy, so a Template can wrap either without the caller needing to switch
// on the concrete type for wire operations.
type templateRecord interface {
	fmt.Stringer

	Type() string
	Id() uint16
	Length() uint16

	Encode(io.Writer) (int, error)
}

// TemplateMetadata carries bookkeeping that is not part of the wire record,
// mirroring how the teacher's cache entries attach provenance to a Template.
type TemplateMetadata struct {
	TemplateId          uint16    `json:"templateId,omitempty"`
	ObservationDomainId uint32    `json:"observationDomainId,omitempty"`
	CreationTimestamp   time.Time `json:"created,omitempty"`
}

// Template wraps a parsed template or options-template record together with
// the raw bytes it was decoded from (or, for derived templates, the bytes it
// will be re-emitted as).
type Template struct {
	*TemplateMetadata `json:"metadata,omitempty"`
	Record            templateRecord `json:"record,omitempty"`
	Raw               []byte         `json:"-"`
}

func (t *Template) IsOptions() bool {
	_, ok := t.Record.(*OptionsTemplateRecord)
	return ok
}

func (t *Template) String() string {
	if t.Record == nil {
		return "<nil template>"
	}
	return t.Record.String()
}
