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
	"math"
	"net"
	"strconv"
)

// DataType is one of the abstract data types IANA assigns to Information
// Elements. Unlike the teacher's per-type Field implementations, a DataType
// here never holds a decoded value: the extend engine only ever encodes a
// literal (from config) or a type's zero value onto the wire, it never
// decodes extension values back out, so Size/EncodeLiteral/EncodeDefault are
// all it needs.
type DataType string

const (
	Bool        DataType = "boolean"
	Unsigned8   DataType = "unsigned8"
	Unsigned16  DataType = "unsigned16"
	Unsigned32  DataType = "unsigned32"
	Unsigned64  DataType = "unsigned64"
	Signed8     DataType = "signed8"
	Signed16    DataType = "signed16"
	Signed32    DataType = "signed32"
	Signed64    DataType = "signed64"
	Float32     DataType = "float32"
	Float64     DataType = "float64"
	Ipv4Address DataType = "ipv4Address"
	Ipv6Address DataType = "ipv6Address"
	String      DataType = "string"
	OctetArray  DataType = "octetArray"
)

// Size returns the fixed wire width of the type, and whether it is
// variable-length instead (in which case the width is meaningless and the
// field's Template specifier must carry the VariableLength sentinel).
//
// Grounded on spec.md §4.A's size_of(data_type) table.
func (d DataType) Size() (width uint16, variable bool) {
	switch d {
	case Bool, Unsigned8, Signed8:
		return 1, false
	case Unsigned16, Signed16:
		return 2, false
	case Unsigned32, Signed32, Float32, Ipv4Address:
		return 4, false
	case Unsigned64, Signed64, Float64:
		return 8, false
	case Ipv6Address:
		return 16, false
	case String, OctetArray:
		return VariableLength, true
	default:
		return 0, false
	}
}

// ValidateLiteral reports whether literal can be encoded as d without loss,
// resolving spec.md §9's integer-overflow Open Question by rejecting at
// config-load time rather than truncating at encode time.
func (d DataType) ValidateLiteral(literal string) error {
	switch d {
	case Bool:
		_, err := strconv.ParseBool(literal)
		return err
	case Unsigned8:
		_, err := strconv.ParseUint(literal, 10, 8)
		return err
	case Unsigned16:
		_, err := strconv.ParseUint(literal, 10, 16)
		return err
	case Unsigned32:
		_, err := strconv.ParseUint(literal, 10, 32)
		return err
	case Unsigned64:
		_, err := strconv.ParseUint(literal, 10, 64)
		return err
	case Signed8:
		_, err := strconv.ParseInt(literal, 10, 8)
		return err
	case Signed16:
		_, err := strconv.ParseInt(literal, 10, 16)
		return err
	case Signed32:
		_, err := strconv.ParseInt(literal, 10, 32)
		return err
	case Signed64:
		_, err := strconv.ParseInt(literal, 10, 64)
		return err
	case Float32:
		_, err := strconv.ParseFloat(literal, 32)
		return err
	case Float64:
		_, err := strconv.ParseFloat(literal, 64)
		return err
	case Ipv4Address:
		ip := net.ParseIP(literal)
		if ip == nil || ip.To4() == nil {
			return fmt.Errorf("%q is not a valid IPv4 address", literal)
		}
		return nil
	case Ipv6Address:
		ip := net.ParseIP(literal)
		if ip == nil {
			return fmt.Errorf("%q is not a valid IPv6 address", literal)
		}
		return nil
	case String, OctetArray:
		return nil
	default:
		return fmt.Errorf("unsupported data type %q", d)
	}
}

// EncodeLiteral writes literal onto w in the wire form of d. Callers must
// have already validated literal with ValidateLiteral.
func (d DataType) EncodeLiteral(w io.Writer, literal string) (int, error) {
	switch d {
	case Bool:
		v, _ := strconv.ParseBool(literal)
		b := byte(2) // IPFIX boolean: 1 = true, 2 = false (RFC 7011 §6.1.5)
		if v {
			b = 1
		}
		return w.Write([]byte{b})
	case Unsigned8:
		v, _ := strconv.ParseUint(literal, 10, 8)
		return w.Write([]byte{byte(v)})
	case Unsigned16:
		v, _ := strconv.ParseUint(literal, 10, 16)
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(v))
		return w.Write(b)
	case Unsigned32:
		v, _ := strconv.ParseUint(literal, 10, 32)
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v))
		return w.Write(b)
	case Unsigned64:
		v, _ := strconv.ParseUint(literal, 10, 64)
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, v)
		return w.Write(b)
	case Signed8:
		v, _ := strconv.ParseInt(literal, 10, 8)
		return w.Write([]byte{byte(v)})
	case Signed16:
		v, _ := strconv.ParseInt(literal, 10, 16)
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(int16(v)))
		return w.Write(b)
	case Signed32:
		v, _ := strconv.ParseInt(literal, 10, 32)
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(int32(v)))
		return w.Write(b)
	case Signed64:
		v, _ := strconv.ParseInt(literal, 10, 64)
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(v))
		return w.Write(b)
	case Float32:
		v, _ := strconv.ParseFloat(literal, 32)
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, math.Float32bits(float32(v)))
		return w.Write(b)
	case Float64:
		v, _ := strconv.ParseFloat(literal, 64)
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, math.Float64bits(v))
		return w.Write(b)
	case Ipv4Address:
		ip := net.ParseIP(literal).To4()
		return w.Write(ip)
	case Ipv6Address:
		ip := net.ParseIP(literal).To16()
		return w.Write(ip)
	case String, OctetArray:
		return encodeVariableLength(w, []byte(literal))
	default:
		return 0, fmt.Errorf("unsupported data type %q", d)
	}
}

// EncodeDefault writes the "not matched" value for d: the zero value for
// fixed-width types, and a zero-length variable-length header for
// STRING/OCTET_ARRAY, per spec.md §4.D step 4(b).
func (d DataType) EncodeDefault(w io.Writer) (int, error) {
	width, variable := d.Size()
	if variable {
		return w.Write([]byte{0x00})
	}
	return w.Write(make([]byte, width))
}

func encodeVariableLength(w io.Writer, payload []byte) (int, error) {
	if len(payload) < 255 {
		n, err := w.Write([]byte{byte(len(payload))})
		if err != nil {
			return n, err
		}
		m, err := w.Write(payload)
		return n + m, err
	}
	hdr := make([]byte, 0, 3)
	hdr = append(hdr, 0xFF)
	hdr = binary.BigEndian.AppendUint16(hdr, uint16(len(payload)))
	n, err := w.Write(hdr)
	if err != nil {
		return n, err
	}
	m, err := w.Write(payload)
	return n + m, err
}
