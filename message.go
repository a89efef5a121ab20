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
	"encoding/binary"
	"fmt"
	"io"

	"github.com/flowkit/ipfix-extender/iana/version"
)

type Message struct {
	Version             version.ProtocolVersion `json:"version,omitempty" yaml:"version,omitempty"`
	Length              uint16 `json:"length,omitempty" yaml:"length,omitempty"`
	ExportTime          uint32 `json:"exportTime,omitempty" yaml:"exportTime,omitempty"`
	SequenceNumber      uint32 `json:"sequenceNumber,omitempty" yaml:"sequenceNumber,omitempty"`
	ObservationDomainId uint32 `json:"observationDomainId,omitempty" yaml:"observationDomainId,omitempty"`

	Sets []*Set `json:"sets,omitempty" yaml:"sets,omitempty"`
}

func (m *Message) String() string {
	s := make([]string, 0, len(m.Sets))
	for _, set := range m.Sets {
		s = append(s, set.String())
	}
	return fmt.Sprintf("{version:%d length:%d exportTime:%d sequenceNumber:%d observationDomainId:%d sets:%v}",
		m.Version, m.Length, m.ExportTime, m.SequenceNumber, m.ObservationDomainId, s)
}

// EncodeHeader writes the 16-byte Message Header exactly as decoded, except
// for Length, which the caller back-patches once the message body is known.
func (m *Message) EncodeHeader(w io.Writer) (int, error) {
	b := make([]byte, 0, MessageHeaderLength)
	b = binary.BigEndian.AppendUint16(b, uint16(m.Version))
	b = binary.BigEndian.AppendUint16(b, m.Length)
	b = binary.BigEndian.AppendUint32(b, m.ExportTime)
	b = binary.BigEndian.AppendUint32(b, m.SequenceNumber)
	b = binary.BigEndian.AppendUint32(b, m.ObservationDomainId)
	return w.Write(b)
}

// DecodeMessage reads one IPFIX message from r in full, resolving Data Set
// templates against cache (which is also populated with any Template/Options
// Template records the message itself defines).
func DecodeMessage(r io.Reader, cache TemplateCache) (*Message, int, error) {
	m := &Message{}
	n := 0

	hdr := make([]byte, MessageHeaderLength)
	hn, err := io.ReadFull(r, hdr)
	n += hn
	if err != nil {
		return nil, n, err
	}

	m.Version = version.ProtocolVersion(binary.BigEndian.Uint16(hdr[0:2]))
	if m.Version != version.IPFIX {
		return nil, n, UnknownVersion(uint16(m.Version))
	}
	m.Length = binary.BigEndian.Uint16(hdr[2:4])
	m.ExportTime = binary.BigEndian.Uint32(hdr[4:8])
	m.SequenceNumber = binary.BigEndian.Uint32(hdr[8:12])
	m.ObservationDomainId = binary.BigEndian.Uint32(hdr[12:16])

	remaining := int(m.Length) - MessageHeaderLength
	for remaining >= SetHeaderLength {
		set, sn, err := DecodeSet(r, m.ObservationDomainId, cache)
		n += sn
		remaining -= sn
		if err != nil {
			return m, n, err
		}
		m.Sets = append(m.Sets, set)
	}

	return m, n, nil
}
