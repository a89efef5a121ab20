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
	"encoding/binary"
	"testing"

	ipfix "github.com/flowkit/ipfix-extender"
)

func TestBuilderHeaderAndEmptyFinish(t *testing.T) {
	b := NewBuilder(64)
	msg := &ipfix.Message{Length: 16, ExportTime: 1, SequenceNumber: 2, ObservationDomainId: 3}
	if err := b.WriteHeader(msg); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if !b.IsEmpty() {
		t.Fatal("expected header-only message to be empty")
	}

	out, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(out) != ipfix.MessageHeaderLength {
		t.Fatalf("expected %d bytes, got %d", ipfix.MessageHeaderLength, len(out))
	}
	if got := binary.BigEndian.Uint16(out[2:4]); got != uint16(ipfix.MessageHeaderLength) {
		t.Fatalf("expected back-patched length %d, got %d", ipfix.MessageHeaderLength, got)
	}
}

func TestBuilderDataSetPaddingAndLength(t *testing.T) {
	b := NewBuilder(128)
	msg := &ipfix.Message{Length: 16}
	if err := b.WriteHeader(msg); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	if err := b.BeginDataSet(256); err != nil {
		t.Fatalf("BeginDataSet: %v", err)
	}
	if id, open := b.CurrentDataSet(); !open || id != 256 {
		t.Fatalf("expected open data set 256, got id=%d open=%v", id, open)
	}
	// 5 bytes of record data after the 4-byte set header (9 bytes) forces
	// three bytes of padding.
	if _, err := b.Write([]byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := b.EndDataSet(); err != nil {
		t.Fatalf("EndDataSet: %v", err)
	}
	if _, open := b.CurrentDataSet(); open {
		t.Fatal("expected data set to be closed")
	}

	out, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	// header(16) + set header(4) + 5 bytes + 3 pad = 28; no further padding
	// is added at the message level (IPFIX doesn't repad the whole message),
	// so total length is exactly 28.
	wantLen := ipfix.MessageHeaderLength + ipfix.SetHeaderLength + 8
	if len(out) != wantLen {
		t.Fatalf("expected %d total bytes, got %d", wantLen, len(out))
	}

	setLen := binary.BigEndian.Uint16(out[18:20])
	if int(setLen) != ipfix.SetHeaderLength+8 {
		t.Fatalf("expected set length %d, got %d", ipfix.SetHeaderLength+8, setLen)
	}
	if setLen%4 != 0 {
		t.Fatalf("expected set length padded to 4-byte boundary, got %d", setLen)
	}
}

func TestBuilderElidesEmptyDataSet(t *testing.T) {
	b := NewBuilder(64)
	msg := &ipfix.Message{Length: 16}
	if err := b.WriteHeader(msg); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	if err := b.BeginDataSet(256); err != nil {
		t.Fatalf("BeginDataSet: %v", err)
	}
	if err := b.EndDataSet(); err != nil {
		t.Fatalf("EndDataSet: %v", err)
	}

	if !b.IsEmpty() {
		t.Fatal("expected a data set with no records to be elided, leaving the message empty")
	}
}

func TestBuilderWriteTemplateSet(t *testing.T) {
	b := NewBuilder(64)
	msg := &ipfix.Message{Length: 16}
	if err := b.WriteHeader(msg); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	raw := []byte{0x9C, 0x40, 0x00, 0x02, 0x00, 0x08, 0x00, 0x04, 0x00, 0x52, 0xFF, 0xFF}
	if err := b.WriteTemplateSet(raw); err != nil {
		t.Fatalf("WriteTemplateSet: %v", err)
	}

	out, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	setId := binary.BigEndian.Uint16(out[16:18])
	if setId != ipfix.IPFIX {
		t.Fatalf("expected template set id %d, got %d", ipfix.IPFIX, setId)
	}
	setLen := binary.BigEndian.Uint16(out[18:20])
	if setLen%4 != 0 {
		t.Fatalf("expected set length padded to 4-byte boundary, got %d", setLen)
	}
}

func TestBuilderRejectsWriteBeyondCapacity(t *testing.T) {
	b := NewBuilder(4)
	if _, err := b.Write([]byte{1, 2, 3, 4, 5}); err != ErrBufferExhausted {
		t.Fatalf("expected ErrBufferExhausted, got %v", err)
	}
}

func TestBuilderCopySetRejectedWhileDataSetOpen(t *testing.T) {
	b := NewBuilder(64)
	if err := b.BeginDataSet(256); err != nil {
		t.Fatalf("BeginDataSet: %v", err)
	}
	if err := b.CopySet([]byte{0, 2, 0, 4}); err != ErrSetOpenDuringWrite {
		t.Fatalf("expected ErrSetOpenDuringWrite, got %v", err)
	}
}
