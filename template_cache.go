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
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TemplateCache stores templates observed in an IPFIX stream, keyed by
// observation domain and Template ID. It is the same collaborator the
// decoder and the extend package's own derived-template cache both build on:
// add a template, retrieve one, and enumerate everything currently cached.
//
// Caches do not have to perform active expiry; EphemeralCache, the one
// implementation in this package, never expires entries.
type TemplateCache interface {
	GetAll(ctx context.Context) map[TemplateKey]*Template

	Get(ctx context.Context, key TemplateKey) (*Template, error)

	Add(ctx context.Context, key TemplateKey, template *Template) error

	Delete(ctx context.Context, key TemplateKey) error

	Name() string

	Type() string
}

type TemplateKey struct {
	ObservationDomainId uint32
	TemplateId          uint16
}

func NewKey(observationDomainId uint32, templateId uint16) TemplateKey {
	return TemplateKey{
		ObservationDomainId: observationDomainId,
		TemplateId:          templateId,
	}
}

const templateKeySeparator string = "-"

func (k TemplateKey) String() string {
	return fmt.Sprintf("%d%s%d", k.ObservationDomainId, templateKeySeparator, k.TemplateId)
}

func (k TemplateKey) MarshalText() (text []byte, err error) {
	return []byte(k.String()), nil
}

func (k *TemplateKey) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), templateKeySeparator)
	if len(parts) != 2 {
		return errors.New("template key format is invalid")
	}
	odid, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return fmt.Errorf("observation domain id is invalid, %w", err)
	}
	tid, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return fmt.Errorf("template id is invalid, %w", err)
	}
	k.ObservationDomainId = uint32(odid)
	k.TemplateId = uint16(tid)
	return nil
}
